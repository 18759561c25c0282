package workload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadScheduleCSV_ClockTimesAndDurations(t *testing.T) {
	// GIVEN a schedule with clock-time arrivals, one blank and one bad row
	csv := "Arrival,Service\n" +
		"08:00:00,45\n" +
		"08:00:05,\n" +
		"not-a-time,30\n" +
		"08:00:05,\"12,5\"\n"

	s, err := ReadScheduleCSV(strings.NewReader(csv), ColumnMapping{})
	require.NoError(t, err)

	// THEN the bad row is skipped and durations stay aligned with arrivals
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, []float64{28800, 28805, 28805}, s.Arrivals)
	assert.Equal(t, []float64{45, 0, 12.5}, s.Services)
	assert.Equal(t, []float64{0, 5, 5}, s.Rebased())
	assert.True(t, s.HasServices())
}

func TestReadScheduleCSV_MinutesUnit(t *testing.T) {
	s, err := ReadScheduleCSV(strings.NewReader("t,d\n0,1.5\n10,0.5\n"),
		ColumnMapping{Arrival: "t", Duration: "d", DurationUnit: UnitMinutes})
	require.NoError(t, err)
	assert.Equal(t, []float64{90, 30}, s.Services)
}

func TestReadScheduleCSV_StartEndColumns(t *testing.T) {
	csv := "arrival,start,end\n" +
		"2024-03-01 08:00:00,2024-03-01 08:00:10,2024-03-01 08:00:55\n" +
		"2024-03-01 08:01:00,2024-03-01 08:01:00,bad\n"
	s, err := ReadScheduleCSV(strings.NewReader(csv), ColumnMapping{Start: "start", End: "end"})
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, []float64{45, 0}, s.Services)
	assert.Equal(t, []float64{0, 60}, s.Rebased())
}

func TestReadScheduleCSV_NoServiceColumn_AllSampled(t *testing.T) {
	s, err := ReadScheduleCSV(strings.NewReader("arrival\n0\n4\n9\n"), ColumnMapping{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, s.Services)
	assert.False(t, s.HasServices())
}

func TestReadScheduleCSV_OutOfOrderRowsSorted(t *testing.T) {
	s, err := ReadScheduleCSV(strings.NewReader("arrival,service\n10,1\n0,2\n5,3\n"), ColumnMapping{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 10}, s.Arrivals)
	assert.Equal(t, []float64{2, 3, 1}, s.Services, "durations follow their rows")
}

func TestReadScheduleCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		cols ColumnMapping
		want string
	}{
		{"empty", "", ColumnMapping{}, "no header"},
		{"missing arrival column", "time,service\n0,1\n", ColumnMapping{}, "arrival column"},
		{"missing start/end", "arrival\n0\n", ColumnMapping{Start: "s", End: "e"}, "start/end"},
		{"start without end", "arrival\n0\n", ColumnMapping{Start: "s"}, "together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadScheduleCSV(strings.NewReader(tt.csv), tt.cols)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.5", 12.5, true},
		{"12,5", 12.5, true},
		{"1:02:03", 3723, true},
		{"08:30", 30600, true},
		{"1970-01-01T00:01:00Z", 60, true},
		{"1970-01-01 00:00:30", 30, true},
		{"", 0, false},
		{"soon", 0, false},
		{"10:75:00", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
