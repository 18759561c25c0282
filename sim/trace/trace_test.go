package trace

import (
	"testing"
)

func TestSimulationTrace_RecordAdmission_AppendsRecord(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace("run-1")

	// WHEN an admission record is recorded
	st.RecordAdmission(AdmissionRecord{JobID: "passenger_0", Seq: 0, Tick: 3, Clock: 1.5, ArrivalAt: 1.2})

	// THEN the trace contains one admission record with correct data
	if len(st.Admissions) != 1 {
		t.Fatalf("expected 1 admission, got %d", len(st.Admissions))
	}
	if st.Admissions[0].JobID != "passenger_0" {
		t.Errorf("expected job ID passenger_0, got %s", st.Admissions[0].JobID)
	}
	if st.RunID != "run-1" {
		t.Errorf("expected run ID run-1, got %s", st.RunID)
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	st := NewSimulationTrace("run")

	st.RecordAssignment(AssignmentRecord{JobID: "a", Server: 0, StartAt: 1, EndAt: 4})
	st.RecordAssignment(AssignmentRecord{JobID: "b", Server: 1, StartAt: 2, EndAt: 3})
	st.RecordCompletion(CompletionRecord{JobID: "b", Server: 1, Clock: 3})
	st.RecordCompletion(CompletionRecord{JobID: "a", Server: 0, Clock: 4})

	if st.Assignments[0].JobID != "a" || st.Assignments[1].JobID != "b" {
		t.Errorf("assignment order not preserved: %+v", st.Assignments)
	}
	if st.Completions[0].JobID != "b" || st.Completions[1].JobID != "a" {
		t.Errorf("completion order not preserved: %+v", st.Completions)
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"", true},
		{"none", true},
		{"events", true},
		{"decisions", false},
		{"EVENTS", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.want {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestTraceLevel_Enabled(t *testing.T) {
	if TraceLevelNone.Enabled() || TraceLevel("").Enabled() {
		t.Error("none/empty levels must not record")
	}
	if !TraceLevelEvents.Enabled() {
		t.Error("events level must record")
	}
}
