// Package testutil provides shared test infrastructure for the booth simulator.
// It holds the reference-model golden dataset and float assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one parameter set with its expected reference-model values.
type GoldenTestCase struct {
	Name                 string        `json:"name"`
	ArrivalRatePerMinute float64       `json:"arrival_rate_per_minute"`
	MeanServiceSeconds   float64       `json:"mean_service_seconds"`
	ServiceCV            float64       `json:"service_cv"`
	Servers              int           `json:"servers"`
	Metrics              GoldenMetrics `json:"metrics"`
}

// GoldenMetrics represents the expected reference-model output.
type GoldenMetrics struct {
	Stable bool `json:"stable"`

	// Closed-form values; all zero when unstable
	Rho       float64 `json:"rho"`
	Lq        float64 `json:"lq"`
	WqSeconds float64 `json:"wq_seconds"`
	L         float64 `json:"l"`
	WSeconds  float64 `json:"w_seconds"`
	P0        float64 `json:"p0"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	if len(dataset.Tests) == 0 {
		t.Fatal("Golden dataset has no test cases")
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
