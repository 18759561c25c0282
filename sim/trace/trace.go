package trace

// TraceLevel controls the verbosity of engine event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures every admission, assignment and completion.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Enabled reports whether records should be collected at this level.
func (l TraceLevel) Enabled() bool {
	return l == TraceLevelEvents
}

// SimulationTrace collects the event records of one engine run.
// RunID changes on every reset; records never carry it so two runs with the
// same seed compare equal record-for-record.
type SimulationTrace struct {
	RunID       string
	Admissions  []AdmissionRecord
	Assignments []AssignmentRecord
	Completions []CompletionRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(runID string) *SimulationTrace {
	return &SimulationTrace{
		RunID:       runID,
		Admissions:  make([]AdmissionRecord, 0),
		Assignments: make([]AssignmentRecord, 0),
		Completions: make([]CompletionRecord, 0),
	}
}

// RecordAdmission appends an admission record.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	st.Admissions = append(st.Admissions, record)
}

// RecordAssignment appends an assignment record.
func (st *SimulationTrace) RecordAssignment(record AssignmentRecord) {
	st.Assignments = append(st.Assignments, record)
}

// RecordCompletion appends a completion record.
func (st *SimulationTrace) RecordCompletion(record CompletionRecord) {
	st.Completions = append(st.Completions, record)
}
