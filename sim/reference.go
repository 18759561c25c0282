package sim

import "math"

// ReferenceModel holds the closed-form baseline for a parameter set.
//
// The formulas are the Pollaczek-Khinchine M/G/1 mean-value results applied
// with ρ = λE[S]/c. For c > 1 this is an approximation, not the exact M/G/c
// answer. When the system is unstable (ρ >= 1) or inactive (λ <= 0), Stable
// is false and every derived quantity is zero.
type ReferenceModel struct {
	Rho                  float64 `json:"rho"`
	Lq                   float64 `json:"lq"`
	WqSeconds            float64 `json:"wq_seconds"`
	L                    float64 `json:"l"`
	WSeconds             float64 `json:"w_seconds"`
	P0                   float64 `json:"p0"`
	ServiceRatePerMinute float64 `json:"service_rate_per_minute"` // μ = 60/E[S]
	Servers              int     `json:"servers"`
	Stable               bool    `json:"stable"`
}

// ComputeReference evaluates the reference model for λ (arrivals/minute),
// E[S] (seconds), CV of service and c booths.
func ComputeReference(arrivalRatePerMinute, meanServiceSeconds, serviceCV float64, servers int) ReferenceModel {
	if servers < 1 {
		servers = 1
	}
	ref := ReferenceModel{Servers: servers}
	if meanServiceSeconds > 0 && !math.IsInf(meanServiceSeconds, 0) {
		ref.ServiceRatePerMinute = 60 / meanServiceSeconds
	}

	rho := (arrivalRatePerMinute / 60 * meanServiceSeconds) / float64(servers)
	if math.IsNaN(rho) || math.IsInf(rho, 0) || rho < 0 {
		rho = 0
	}
	ref.Rho = rho

	cv2 := serviceCV * serviceCV
	if math.IsNaN(cv2) || math.IsInf(cv2, 0) {
		return ref
	}
	if !(arrivalRatePerMinute > 0) || !(rho > 0 && rho < 1) {
		return ref
	}

	lambdaPerSecond := arrivalRatePerMinute / 60
	ref.Lq = rho * rho * (1 + cv2) / (2 * (1 - rho))
	ref.WqSeconds = ref.Lq / lambdaPerSecond
	ref.L = ref.Lq + rho
	ref.WSeconds = ref.WqSeconds + meanServiceSeconds
	ref.P0 = 1 - rho
	ref.Stable = true
	return ref
}

// WqMinutes returns the expected queue wait in minutes.
func (r ReferenceModel) WqMinutes() float64 { return r.WqSeconds / 60 }

// WMinutes returns the expected time in system in minutes.
func (r ReferenceModel) WMinutes() float64 { return r.WSeconds / 60 }

// ModelLabel returns "M/G/1" for a single booth, else "M/G/c".
func (r ReferenceModel) ModelLabel() string {
	if r.Servers <= 1 {
		return "M/G/1"
	}
	return "M/G/c"
}
