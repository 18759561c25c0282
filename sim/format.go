package sim

import (
	"fmt"
	"math"
)

// FormatSeconds renders a duration for display: "12.3s" below one minute,
// "2m 5s" otherwise. Non-finite and non-positive values render as "0s".
func FormatSeconds(sec float64) string {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || sec <= 0 {
		return "0s"
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	total := int64(math.Round(sec))
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}
