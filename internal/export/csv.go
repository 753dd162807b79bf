// Package export renders break records as the CSV consumed by the payroll spreadsheets.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"breaktime.service/internal/core/model"
)

// Header is the column order downstream spreadsheets depend on.
var Header = []string{"Fecha", "Nombre", "Código", "Turno", "Tipo", "Entrada", "Salida", "Duración (min)"}

const csvDateLayout = "02/01/2006"

// Row is one parsed CSV line. Date is converted back to 2006-01-02.
type Row struct {
	Date            string
	EmployeeName    string
	EmployeeCode    string
	Shift           model.Shift
	Category        model.Category
	StartTime       string
	EndTime         string
	DurationMinutes int
}

// FileName is the download name for a CSV covering from..to.
func FileName(from, to string) string {
	return fmt.Sprintf("registros_descansos_%s_%s.csv", from, to)
}

// WriteRecords writes the header and one line per record, keeping the given order.
func WriteRecords(w io.Writer, records []model.BreakRecordView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}

	for _, r := range records {
		date := r.Date
		if t, err := time.Parse(model.DateLayout, r.Date); err == nil {
			date = t.Format(csvDateLayout)
		}
		line := []string{
			date,
			r.EmployeeName,
			r.EmployeeCode,
			string(r.EmployeeShift),
			string(r.Category),
			r.StartTime,
			r.EndTime,
			strconv.Itoa(r.DurationMinutes),
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadRecords parses CSV produced by WriteRecords.
func ReadRecords(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty csv")
	}
	if err != nil {
		return nil, err
	}
	for i, col := range Header {
		if head[i] != col {
			return nil, fmt.Errorf("unexpected column %d: %q, want %q", i+1, head[i], col)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := time.Parse(csvDateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q", line, rec[0])
		}
		minutes, err := strconv.Atoi(rec[7])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad duration %q", line, rec[7])
		}

		rows = append(rows, Row{
			Date:            date.Format(model.DateLayout),
			EmployeeName:    rec[1],
			EmployeeCode:    rec[2],
			Shift:           model.Shift(rec[3]),
			Category:        model.Category(rec[4]),
			StartTime:       rec[5],
			EndTime:         rec[6],
			DurationMinutes: minutes,
		})
	}
	return rows, nil
}
