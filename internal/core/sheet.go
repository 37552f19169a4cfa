package core

// sheet.go partitions a decoded spreadsheet into valid candidates and an
// ordered list of human-readable errors.

import "strings"

// Candidate is a validated row waiting for duplicate detection and insert.
type Candidate struct {
	Row    int // Display row number
	Record AthleteRecord
}

// SheetResult is the outcome of ProcessSheet. Structural is set when the
// whole sheet was rejected; Errors then holds its single message.
type SheetResult struct {
	Candidates []Candidate
	Errors     []string
	Rows       int // Non-blank data rows examined
	Structural *StructuralError
}

// ProcessFile reads and processes an uploaded spreadsheet. Read failures are
// reported in the result, never returned.
func ProcessFile(filename string, data []byte) SheetResult {
	sheet, err := ReadSheet(filename, data)
	if err != nil {
		return structuralResult(&StructuralError{Cause: err})
	}
	return ProcessSheet(sheet)
}

// ProcessSheet validates every non-blank row of the sheet in order.
//
// The required columns are checked once up front; when any is missing the
// result holds a single error and no row is validated. Rows blank across all
// required columns are dropped but still count toward row numbering.
func ProcessSheet(sheet *Sheet) SheetResult {
	idx, missing := ValidateHeaders(sheet.Header, AthleteFields)
	if len(missing) > 0 {
		return structuralResult(&StructuralError{Missing: missing})
	}

	validator := NewRowValidator(AthleteFields)
	result := SheetResult{}

	for i, cells := range sheet.Rows {
		row := Row{Number: i + 2, Values: make(map[string]string, len(AthleteFields))}
		for _, spec := range AthleteFields {
			if pos := idx[spec.Name]; pos < len(cells) {
				row.Values[spec.Name] = cells[pos]
			}
		}
		if isBlankRow(row) {
			continue
		}

		result.Rows++
		rec, verr := validator.Validate(row)
		if verr != nil {
			result.Errors = append(result.Errors, verr.Error())
			continue
		}
		result.Candidates = append(result.Candidates, Candidate{Row: row.Number, Record: rec})
	}

	return result
}

func structuralResult(err *StructuralError) SheetResult {
	return SheetResult{Errors: []string{err.Error()}, Structural: err}
}

func isBlankRow(row Row) bool {
	for _, v := range row.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
