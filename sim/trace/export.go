package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ExportHeader describes the run a trace export came from. It is written as
// YAML next to the CSV data.
type ExportHeader struct {
	RunID                string  `yaml:"run_id"`
	Mode                 string  `yaml:"mode"`
	Seed                 int64   `yaml:"seed"`
	Servers              int     `yaml:"servers"`
	ArrivalRatePerMinute float64 `yaml:"arrival_rate_per_minute"`
	MeanServiceSeconds   float64 `yaml:"mean_service_seconds"`
	ServiceCV            float64 `yaml:"service_cv"`
	SpeedMultiplier      float64 `yaml:"speed_multiplier"`
}

// PassengerRow joins the three records of one passenger. Fields of events
// that have not happened yet are zero, with Server -1 before assignment.
type PassengerRow struct {
	JobID        string
	Seq          int64
	ArrivalAt    float64
	AdmittedTick int64
	Server       int
	StartAt      float64
	EndAt        float64
	Wait         float64
	Completed    bool
}

// exportColumns are the CSV data columns. "arrival" and "service" match the
// default schedule import columns, so an export can be replayed as a schedule.
var exportColumns = []string{
	"job_id", "seq", "arrival", "admitted_tick", "server",
	"start", "service", "end", "wait", "completed",
}

// PassengerRows returns one row per admitted passenger in arrival order.
func PassengerRows(st *SimulationTrace) []PassengerRow {
	if st == nil {
		return nil
	}
	rows := make([]PassengerRow, 0, len(st.Admissions))
	bySeq := make(map[int64]int, len(st.Admissions))
	for _, a := range st.Admissions {
		bySeq[a.Seq] = len(rows)
		rows = append(rows, PassengerRow{
			JobID:        a.JobID,
			Seq:          a.Seq,
			ArrivalAt:    a.ArrivalAt,
			AdmittedTick: a.Tick,
			Server:       -1,
		})
	}
	for _, a := range st.Assignments {
		if i, ok := bySeq[a.Seq]; ok {
			rows[i].Server = a.Server
			rows[i].StartAt = a.StartAt
			rows[i].EndAt = a.EndAt
		}
	}
	for _, c := range st.Completions {
		if i, ok := bySeq[c.Seq]; ok {
			rows[i].Wait = c.Wait
			rows[i].Completed = true
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ArrivalAt != rows[j].ArrivalAt {
			return rows[i].ArrivalAt < rows[j].ArrivalAt
		}
		return rows[i].Seq < rows[j].Seq
	})
	return rows
}

// WriteCSV writes the passenger rows of st to w with a header row.
func WriteCSV(w io.Writer, st *SimulationTrace) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range PassengerRows(st) {
		service := ""
		if r.Server >= 0 {
			service = formatFloat(r.EndAt - r.StartAt)
		}
		row := []string{
			r.JobID,
			strconv.FormatInt(r.Seq, 10),
			formatFloat(r.ArrivalAt),
			strconv.FormatInt(r.AdmittedTick, 10),
			strconv.Itoa(r.Server),
			formatFloat(r.StartAt),
			service,
			formatFloat(r.EndAt),
			formatFloat(r.Wait),
			strconv.FormatBool(r.Completed),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %s: %w", r.JobID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Export writes header (YAML) and passenger data (CSV) to separate files.
func Export(header ExportHeader, st *SimulationTrace, headerPath, dataPath string) error {
	if header.RunID == "" && st != nil {
		header.RunID = st.RunID
	}
	headerData, err := yaml.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling trace header: %w", err)
	}
	if err := os.WriteFile(headerPath, headerData, 0644); err != nil {
		return fmt.Errorf("writing trace header: %w", err)
	}

	file, err := os.Create(dataPath)
	if err != nil {
		return fmt.Errorf("creating trace data file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return WriteCSV(file, st)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
