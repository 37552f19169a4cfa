package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2010-05-15", "2010-05-15", true},
		{" 2010-05-15 ", "2010-05-15", true},
		{"2010-05-15 00:00:00", "2010-05-15", true},
		{"2010-05-15T13:45:00", "2010-05-15", true},
		{"2010-05-15T13:45:00+05:30", "2010-05-15", true},
		{"2010/05/15", "2010-05-15", true},
		{"5/15/2010", "2010-05-15", true},
		{"05/15/2010", "2010-05-15", true},
		{"May 15, 2010", "2010-05-15", true},
		{"15 May 2010", "2010-05-15", true},
		{"20100515", "2010-05-15", true},
		{"5/15/10", "2010-05-15", true},
		{"15/05/2010", "2010-05-15", true},
		{"15.05.2010", "2010-05-15", true},
		{"15-05-2010", "2010-05-15", true},
		{"2010-5-15", "2010-05-15", true},
		{"May 15 2010", "2010-05-15", true},
		{"15-May-2010", "2010-05-15", true},
		{"15/05/10", "2010-05-15", true},
		{"03/04/2010", "2010-03-04", true},
		{"", "", false},
		{"not-a-date", "", false},
		{"2010-13-40", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && FormatDate(got) != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, FormatDate(got), tt.want)
		}
		if ok && got.Location() != time.UTC {
			t.Errorf("ParseDate(%q) location = %v, want UTC", tt.in, got.Location())
		}
	}
}

func TestParseDate_TwoDigitYearInPast(t *testing.T) {
	future := (time.Now().Year() + 5) % 100
	got, ok := ParseDate("1/2/" + twoDigits(future))
	if !ok {
		t.Fatal("ParseDate() failed")
	}
	if got.Year() > time.Now().Year() {
		t.Errorf("year = %d, want a year in the past", got.Year())
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func TestExcelSerialToISO(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"40313", "2010-05-15"},
		{"40313.75", "2010-05-15"},
		{"2010-05-15", "2010-05-15"},
		{"20100515", "20100515"},
		{"", ""},
		{"0", "0"},
	}

	for _, tt := range tests {
		if got := excelSerialToISO(tt.in, false); got != tt.want {
			t.Errorf("excelSerialToISO(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Main Dojo ", "Main Dojo"},
		{`="00123"`, "00123"},
		{`"quoted"`, "quoted"},
		{`John "JJ"`, `John "JJ"`},
		{`"North" Dojo`, `"North" Dojo`},
		{`"`, `"`},
		{"O'Brien", "O'Brien"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMakeHeaderIndex_FirstOccurrenceWins(t *testing.T) {
	idx := MakeHeaderIndex([]string{"Name", " NAME ", "", "Dob"})
	if idx["name"] != 0 {
		t.Errorf("idx[name] = %d, want 0", idx["name"])
	}
	if idx["dob"] != 3 {
		t.Errorf("idx[dob] = %d, want 3", idx["dob"])
	}
	if _, ok := idx[""]; ok {
		t.Error("blank header should not be indexed")
	}
}
