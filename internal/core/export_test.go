package core

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestWriteTemplate_UploadsCleanly(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteTemplate(&buf, format); err != nil {
				t.Fatalf("WriteTemplate() error = %v", err)
			}

			res := ProcessFile("template."+string(format), buf.Bytes())
			if len(res.Errors) != 0 {
				t.Fatalf("template errors = %q", res.Errors)
			}
			if len(res.Candidates) != 2 {
				t.Fatalf("Candidates = %d, want 2", len(res.Candidates))
			}
			first, second := res.Candidates[0].Record, res.Candidates[1].Record
			if first.Dojo != "Main Dojo" || first.Belt != BeltYellow {
				t.Errorf("first sample = %+v", first)
			}
			if second.Name != "Jane Smith" || second.Dojo != "East Branch" || second.Belt != BeltBlue || second.Day != DaySunday {
				t.Errorf("second sample = %+v", second)
			}
		})
	}
}

func TestWriteTemplate_XLSXDropLists(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf, FormatXLSX); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	dvs, err := f.GetDataValidations(sheetName)
	if err != nil {
		t.Fatalf("GetDataValidations: %v", err)
	}
	if len(dvs) != 3 {
		t.Errorf("data validations = %d, want 3 (belt, day, gender)", len(dvs))
	}
}

func TestWriteExport_CSV(t *testing.T) {
	created := time.Date(2025, 11, 2, 9, 30, 0, 0, time.UTC)
	athletes := []Athlete{{
		UniqueID:      12,
		CoachID:       4,
		AthleteRecord: AthleteRecord{Name: "Kai", DOB: date(2012, 3, 4), Dojo: "North", Belt: BeltGreen, Day: DaySunday, Gender: GenderMale},
		CreatedAt:     created,
	}}

	var coachView bytes.Buffer
	if err := WriteExport(&coachView, athletes, ExportOptions{Format: FormatCSV}); err != nil {
		t.Fatalf("WriteExport() error = %v", err)
	}
	rows, err := csv.NewReader(&coachView).ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if strings.Join(rows[0], ",") != "ID,Name,DOB,Dojo,Belt,Day,Gender,Registered" {
		t.Errorf("header = %v", rows[0])
	}
	if strings.Join(rows[1], ",") != "12,Kai,2012-03-04,North,Green,Sunday,Male,2025-11-02 09:30" {
		t.Errorf("row = %v", rows[1])
	}

	var adminView bytes.Buffer
	opts := ExportOptions{Format: FormatCSV, Coaches: map[int64]Coach{4: {ID: 4, Email: "sensei@example.com"}}}
	if err := WriteExport(&adminView, athletes, opts); err != nil {
		t.Fatalf("WriteExport() error = %v", err)
	}
	rows, _ = csv.NewReader(&adminView).ReadAll()
	if rows[0][len(rows[0])-1] != "Coach" || rows[1][len(rows[1])-1] != "sensei@example.com" {
		t.Errorf("admin export = %v", rows)
	}
}

func TestWriteExport_ReimportsAsDuplicates(t *testing.T) {
	athletes := []Athlete{{UniqueID: 1, AthleteRecord: AthleteRecord{Name: "Kai", DOB: date(2012, 3, 4), Dojo: "North", Belt: BeltGreen, Day: DaySunday, Gender: GenderMale}}}

	var buf bytes.Buffer
	if err := WriteExport(&buf, athletes, ExportOptions{Format: FormatXLSX}); err != nil {
		t.Fatalf("WriteExport() error = %v", err)
	}
	res := ProcessFile("export.xlsx", buf.Bytes())
	if len(res.Candidates) != 1 {
		t.Fatalf("Candidates = %d (errors %q)", len(res.Candidates), res.Errors)
	}
	if _, dup := FindDuplicate(res.Candidates[0].Record, athletes, DuplicateScope{}); !dup {
		t.Error("re-imported export should match the exported athlete")
	}
}
