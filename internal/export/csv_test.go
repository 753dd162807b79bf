package export

import (
	"bytes"
	"strings"
	"testing"

	"breaktime.service/internal/core/model"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []model.BreakRecordView {
	return []model.BreakRecordView{
		{
			BreakRecord: model.BreakRecord{
				ID: 3, EmployeeID: 2, Category: model.CategoryMeal,
				Date: "2024-03-02", StartTime: "13:05:00", EndTime: "13:52:10", DurationMinutes: 47,
			},
			EmployeeName: "Núñez, Pía", EmployeeCode: "NPI02", EmployeeShift: model.ShiftPartTime,
		},
		{
			BreakRecord: model.BreakRecord{
				ID: 2, EmployeeID: 1, Category: model.CategoryShortBreak,
				Date: "2024-03-01", StartTime: "10:00:00", EndTime: "10:25:00", DurationMinutes: 25,
			},
			EmployeeName: "Alicia Lopez", EmployeeCode: "ALC01", EmployeeShift: model.ShiftFull,
		},
		{
			BreakRecord: model.BreakRecord{
				ID: 1, EmployeeID: 1, Category: model.CategoryShortBreak,
				Date: "2024-03-01", StartTime: "08:00:00", EndTime: "08:00:40", DurationMinutes: 1,
			},
			EmployeeName: "Alicia Lopez", EmployeeCode: "ALC01", EmployeeShift: model.ShiftFull,
		},
	}
}

func TestWriteRecords_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, sampleRecords()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "records", buf.Bytes())
}

func TestRoundTripPreservesOrder(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	rows, err := ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, rows, len(records))

	for i, r := range records {
		assert.Equal(t, r.Date, rows[i].Date)
		assert.Equal(t, r.EmployeeName, rows[i].EmployeeName)
		assert.Equal(t, r.EmployeeCode, rows[i].EmployeeCode)
		assert.Equal(t, r.EmployeeShift, rows[i].Shift)
		assert.Equal(t, r.Category, rows[i].Category)
		assert.Equal(t, r.StartTime, rows[i].StartTime)
		assert.Equal(t, r.EndTime, rows[i].EndTime)
		assert.Equal(t, r.DurationMinutes, rows[i].DurationMinutes)
	}
}

func TestWriteRecords_EmptyHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, nil))
	assert.Equal(t, "Fecha,Nombre,Código,Turno,Tipo,Entrada,Salida,Duración (min)\n", buf.String())

	rows, err := ReadRecords(&buf)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadRecords_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "Date,Name,Code,Shift,Type,In,Out,Minutes\n"},
		{"bad date", strings.Join(Header, ",") + "\n2024-03-01,A,B,Full,DESCANSO,10:00:00,10:05:00,5\n"},
		{"bad duration", strings.Join(Header, ",") + "\n01/03/2024,A,B,Full,DESCANSO,10:00:00,10:05:00,five\n"},
		{"short line", strings.Join(Header, ",") + "\n01/03/2024,A,B\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRecords(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "registros_descansos_2024-03-01_2024-03-31.csv", FileName("2024-03-01", "2024-03-31"))
}
