package core

import (
	"fmt"
	"testing"
)

func TestAthleteFilter_Matches(t *testing.T) {
	a := Athlete{CoachID: 3, AthleteRecord: AthleteRecord{Name: "Kai Tanaka", Dojo: "North Dojo", Belt: BeltBrown, Day: DaySunday, Gender: GenderMale}}

	tests := []struct {
		name   string
		filter AthleteFilter
		want   bool
	}{
		{"empty filter", AthleteFilter{}, true},
		{"query name", AthleteFilter{Query: "tanaka"}, true},
		{"query dojo", AthleteFilter{Query: " NORTH "}, true},
		{"query belt", AthleteFilter{Query: "brow"}, true},
		{"query miss", AthleteFilter{Query: "south"}, false},
		{"day match", AthleteFilter{Day: DaySunday}, true},
		{"day miss", AthleteFilter{Day: DaySaturday}, false},
		{"belt miss", AthleteFilter{Belt: BeltBlack}, false},
		{"gender miss", AthleteFilter{Gender: GenderFemale}, false},
		{"coach match", AthleteFilter{CoachID: 3}, true},
		{"coach miss", AthleteFilter{CoachID: 4}, false},
		{"combined", AthleteFilter{Query: "kai", Day: DaySunday, Belt: BeltBrown, Gender: GenderMale}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(a); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	list := make([]Athlete, 250)
	for i := range list {
		list[i] = Athlete{UniqueID: int64(i + 1), AthleteRecord: AthleteRecord{Name: fmt.Sprintf("A%d", i)}}
	}

	tests := []struct {
		page      int
		wantPage  int
		wantFirst int64
		wantLen   int
	}{
		{0, 1, 1, 100},
		{1, 1, 1, 100},
		{2, 2, 101, 100},
		{3, 3, 201, 50},
		{9, 3, 201, 50},
	}

	for _, tt := range tests {
		p := Paginate(list, tt.page)
		if p.Page != tt.wantPage || p.Pages != 3 || p.Total != 250 {
			t.Errorf("Paginate(%d) = page %d/%d total %d", tt.page, p.Page, p.Pages, p.Total)
		}
		if len(p.Athletes) != tt.wantLen || p.Athletes[0].UniqueID != tt.wantFirst {
			t.Errorf("Paginate(%d) len=%d first=%d, want %d/%d", tt.page, len(p.Athletes), p.Athletes[0].UniqueID, tt.wantLen, tt.wantFirst)
		}
	}

	empty := Paginate(nil, 1)
	if empty.Pages != 1 || empty.Total != 0 || len(empty.Athletes) != 0 {
		t.Errorf("Paginate(nil) = %+v", empty)
	}
}
