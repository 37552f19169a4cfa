package core

// validation.go checks one spreadsheet row (or one manual entry) against the
// athlete field rules.
//
// Fields are checked in a fixed order and validation stops at the first
// failure, so a row reports exactly one reason. Enumerated fields are mapped
// to their canonical spelling through an alias table.

import (
	"fmt"
	"strings"
	"time"
)

// FieldType represents the expected data type for a column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
)

// FieldSpec defines validation rules for a single column.
type FieldSpec struct {
	Name     string            // Column key (lowercase header)
	Header   string            // Column title in templates and exports
	Label    string            // Field name used in messages
	Type     FieldType         // Expected data type
	Aliases  map[string]string // Lowercased input -> canonical value (FieldEnum)
	Expected string            // Accepted spellings, appended to enum errors
}

// AthleteFields are the required athlete columns in validation order.
var AthleteFields = []FieldSpec{
	{Name: "name", Header: "Name", Label: "name", Type: FieldText},
	{Name: "dob", Header: "DOB", Label: "DOB", Type: FieldDate},
	{Name: "dojo", Header: "Dojo", Label: "dojo", Type: FieldText},
	{Name: "belt", Header: "Belt", Label: "belt", Type: FieldEnum, Aliases: beltAliases()},
	{Name: "day", Header: "Day", Label: "day", Type: FieldEnum,
		Aliases: map[string]string{
			"sat": string(DaySaturday), "saturday": string(DaySaturday),
			"sun": string(DaySunday), "sunday": string(DaySunday),
		},
		Expected: "Saturday/Sunday/Sat/Sun",
	},
	{Name: "gender", Header: "Gender", Label: "gender", Type: FieldEnum,
		Aliases: map[string]string{
			"male": string(GenderMale), "m": string(GenderMale), "boy": string(GenderMale), "b": string(GenderMale),
			"female": string(GenderFemale), "f": string(GenderFemale), "girl": string(GenderFemale), "g": string(GenderFemale),
		},
		Expected: "Male/Female/M/F/Boy/Girl/B/G",
	},
}

func beltAliases() map[string]string {
	m := make(map[string]string, len(Belts))
	for _, b := range Belts {
		m[strings.ToLower(string(b))] = string(b)
	}
	return m
}

// RequiredColumns returns the lowercase keys of the required columns.
func RequiredColumns() []string {
	cols := make([]string, len(AthleteFields))
	for i, spec := range AthleteFields {
		cols[i] = spec.Name
	}
	return cols
}

// ValidationError represents the first failed rule of a row.
type ValidationError struct {
	Row     int    // Display row number (header is row 1); 0 for manual entries
	Field   string // Column key
	Value   string // The offending value, empty when missing
	Message string // Human-readable message without the row prefix
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
	}
	return e.Message
}

// Row is one data row keyed by lowercase column name.
type Row struct {
	Number int // Display row number (first data row is 2)
	Values map[string]string
}

// RowFromInput wraps manual-entry fields as a row without a display number.
func RowFromInput(in AthleteInput) Row {
	return Row{Values: map[string]string{
		"name":   in.Name,
		"dob":    in.DOB,
		"dojo":   in.Dojo,
		"belt":   in.Belt,
		"day":    in.Day,
		"gender": in.Gender,
	}}
}

// RowValidator validates rows against field specifications.
type RowValidator struct {
	specs []FieldSpec
}

// NewRowValidator creates a validator for the given specs.
func NewRowValidator(specs []FieldSpec) *RowValidator {
	return &RowValidator{specs: specs}
}

// Validate checks a row and returns the cleaned record, or the first failure.
func (v *RowValidator) Validate(row Row) (AthleteRecord, *ValidationError) {
	clean := make(map[string]string, len(v.specs))
	var dob time.Time

	for _, spec := range v.specs {
		raw := CleanCell(row.Values[spec.Name])
		if spec.Type == FieldText {
			raw = cleanText(row.Values[spec.Name])
		}
		if raw == "" {
			return AthleteRecord{}, v.fail(row, spec, "", "Missing "+spec.Label)
		}

		switch spec.Type {
		case FieldDate:
			d, ok := ParseDate(raw)
			if !ok {
				return AthleteRecord{}, v.fail(row, spec, raw, "Invalid "+spec.Label+" format")
			}
			dob = d
			clean[spec.Name] = FormatDate(d)

		case FieldEnum:
			canonical, ok := spec.Aliases[strings.ToLower(raw)]
			if !ok {
				msg := fmt.Sprintf("Invalid %s '%s'", spec.Label, raw)
				if spec.Expected != "" {
					msg += " (expected: " + spec.Expected + ")"
				}
				return AthleteRecord{}, v.fail(row, spec, raw, msg)
			}
			clean[spec.Name] = canonical

		default:
			clean[spec.Name] = raw
		}
	}

	return AthleteRecord{
		Name:   clean["name"],
		DOB:    dob,
		Dojo:   clean["dojo"],
		Belt:   Belt(clean["belt"]),
		Day:    Day(clean["day"]),
		Gender: Gender(clean["gender"]),
	}, nil
}

func (v *RowValidator) fail(row Row, spec FieldSpec, value, msg string) *ValidationError {
	return &ValidationError{Row: row.Number, Field: spec.Name, Value: value, Message: msg}
}

// ValidateInput validates a manual entry.
func ValidateInput(in AthleteInput) (AthleteRecord, error) {
	rec, verr := NewRowValidator(AthleteFields).Validate(RowFromInput(in))
	if verr != nil {
		return AthleteRecord{}, verr
	}
	return rec, nil
}

// ValidateHeaders checks that every required column exists.
// It returns the header index, or the missing column keys in field order.
func ValidateHeaders(headers []string, specs []FieldSpec) (HeaderIndex, []string) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, spec := range specs {
		if _, ok := idx[spec.Name]; !ok {
			missing = append(missing, spec.Name)
		}
	}

	return idx, missing
}

// Canonical maps a raw enum value for the named column to its canonical
// spelling, e.g. ("day", "sat") -> "Saturday".
func Canonical(field, raw string) (string, bool) {
	for _, spec := range AthleteFields {
		if spec.Name == field && spec.Type == FieldEnum {
			v, ok := spec.Aliases[strings.ToLower(strings.TrimSpace(raw))]
			return v, ok
		}
	}
	return "", false
}
