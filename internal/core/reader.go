package core

// reader.go decodes uploaded spreadsheets into a header and raw rows.
// CSV files are cleaned of a UTF-8 BOM and invalid byte sequences first;
// XLSX workbooks are read from their first sheet with raw cell values so
// that date cells surface as Excel serial numbers.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Format identifies a spreadsheet encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query value or extension to a Format. Unknown values
// fall back to XLSX, the format coaches usually work in.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV
	default:
		return FormatXLSX
	}
}

// ContentType returns the MIME type for downloads.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

var (
	errEmptyFile = errors.New("empty file")
	zipMagic     = []byte("PK\x03\x04")
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
)

// Sheet is a decoded spreadsheet before validation.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// DetectFormat picks the decoder from the file name, falling back to the
// ZIP signature that every XLSX workbook starts with.
func DetectFormat(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV
	case ".xlsx", ".xlsm", ".xls":
		return FormatXLSX
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// ReadSheet decodes a spreadsheet. The first row is the header.
func ReadSheet(filename string, data []byte) (*Sheet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyFile
	}

	var records [][]string
	var err error
	if DetectFormat(filename, data) == FormatXLSX {
		records, err = readXLSX(data)
	} else {
		records, err = parseCSV(sanitizeUTF8(bytes.TrimPrefix(data, utf8BOM)))
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errEmptyFile
	}

	return &Sheet{Header: records[0], Rows: records[1:]}, nil
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return records, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errEmptyFile
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	if col, ok := MakeHeaderIndex(rows[0])["dob"]; ok {
		for _, row := range rows[1:] {
			if col < len(row) {
				row[col] = excelSerialToISO(strings.TrimSpace(row[col]), date1904)
			}
		}
	}

	return rows, nil
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
