package core

// export.go writes the blank upload template and roster exports as CSV or
// XLSX. Both share the upload column titles so an export can be edited and
// uploaded again.

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// RegisteredLayout renders creation timestamps in exports.
const RegisteredLayout = "2006-01-02 15:04"

const sheetName = "Athletes"

// templateSamples are the example rows in the upload template.
var templateSamples = [][]string{
	{"John Doe", "2010-05-15", "Main Dojo", string(BeltYellow), string(DaySaturday), string(GenderMale)},
	{"Jane Smith", "2011-08-22", "East Branch", string(BeltBlue), string(DaySunday), string(GenderFemale)},
}

// TemplateHeader returns the upload column titles.
func TemplateHeader() []string {
	h := make([]string, len(AthleteFields))
	for i, spec := range AthleteFields {
		h[i] = spec.Header
	}
	return h
}

// WriteTemplate writes the upload template with two sample rows.
func WriteTemplate(w io.Writer, format Format) error {
	rows := append([][]string{TemplateHeader()}, templateSamples...)
	return writeTable(w, format, rows, true)
}

// ExportOptions controls roster exports.
type ExportOptions struct {
	Format Format
	// Coaches adds a Coach column resolved through this map (organizer view).
	Coaches map[int64]Coach
}

// ExportHeader returns the export column titles.
func ExportHeader(withCoach bool) []string {
	h := append([]string{"ID"}, TemplateHeader()...)
	h = append(h, "Registered")
	if withCoach {
		h = append(h, "Coach")
	}
	return h
}

// WriteExport writes athletes in the given order.
func WriteExport(w io.Writer, athletes []Athlete, opts ExportOptions) error {
	withCoach := opts.Coaches != nil
	rows := make([][]string, 0, len(athletes)+1)
	rows = append(rows, ExportHeader(withCoach))

	for _, a := range athletes {
		row := []string{
			strconv.FormatInt(a.UniqueID, 10),
			a.Name,
			FormatDate(a.DOB),
			a.Dojo,
			string(a.Belt),
			string(a.Day),
			string(a.Gender),
			a.CreatedAt.Format(RegisteredLayout),
		}
		if withCoach {
			c := opts.Coaches[a.CoachID]
			name := c.Name
			if name == "" {
				name = c.Email
			}
			row = append(row, name)
		}
		rows = append(rows, row)
	}

	return writeTable(w, opts.Format, rows, false)
}

func writeTable(w io.Writer, format Format, rows [][]string, dropLists bool) error {
	if format == FormatCSV {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if dropLists {
		if err := addDropLists(f); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// addDropLists offers the canonical values for the enum columns of the template.
func addDropLists(f *excelize.File) error {
	for i, spec := range AthleteFields {
		if spec.Type != FieldEnum {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("%s2:%s1000", col, col)
		if err := dv.SetDropList(canonicalValues(spec)); err != nil {
			return fmt.Errorf("drop list %s: %w", spec.Name, err)
		}
		if err := f.AddDataValidation(sheetName, dv); err != nil {
			return fmt.Errorf("drop list %s: %w", spec.Name, err)
		}
	}
	return nil
}

func canonicalValues(spec FieldSpec) []string {
	switch spec.Name {
	case "belt":
		out := make([]string, len(Belts))
		for i, b := range Belts {
			out[i] = string(b)
		}
		return out
	case "day":
		return []string{string(DaySaturday), string(DaySunday)}
	default:
		return []string{string(GenderMale), string(GenderFemale)}
	}
}
