package core

import "testing"

func TestComputeStats(t *testing.T) {
	mk := func(coach int64, dojo string, belt Belt, day Day, g Gender) Athlete {
		return Athlete{CoachID: coach, AthleteRecord: AthleteRecord{Name: "x", Dojo: dojo, Belt: belt, Day: day, Gender: g}}
	}
	athletes := []Athlete{
		mk(1, "Main Dojo", BeltWhite, DaySaturday, GenderMale),
		mk(1, "main  dojo", BeltWhite, DaySunday, GenderFemale),
		mk(1, "East", BeltBlack, DaySaturday, GenderMale),
		mk(2, "West", BeltYellow, DaySunday, GenderFemale),
	}

	coachView := ComputeStats(athletes[:3], nil)
	if coachView.Total != 3 || coachView.Saturday != 2 || coachView.Sunday != 1 {
		t.Errorf("coach totals = %d/%d/%d, want 3/2/1", coachView.Total, coachView.Saturday, coachView.Sunday)
	}
	if coachView.ByBelt["White"] != 2 || coachView.ByBelt["Black"] != 1 {
		t.Errorf("ByBelt = %v", coachView.ByBelt)
	}
	if coachView.TopDojos != nil || coachView.Coaches != nil {
		t.Error("coach view should not include organizer fields")
	}

	coaches := []Coach{{ID: 1, Name: "Sensei A"}, {ID: 2, Name: "Sensei B"}, {ID: 3, Name: "Idle"}}
	admin := ComputeStats(athletes, coaches)

	if admin.CoachCount != 3 {
		t.Errorf("CoachCount = %d, want 3", admin.CoachCount)
	}
	if len(admin.TopDojos) != 3 || admin.TopDojos[0].Name != "Main Dojo" || admin.TopDojos[0].Count != 2 {
		t.Errorf("TopDojos = %+v, want Main Dojo first with 2", admin.TopDojos)
	}
	if admin.ByGender["Female"] != 2 {
		t.Errorf("ByGender = %v", admin.ByGender)
	}

	want := []CoachSummary{
		{CoachID: 1, Name: "Sensei A", Total: 3, Saturday: 2, Sunday: 1},
		{CoachID: 2, Name: "Sensei B", Total: 1, Sunday: 1},
		{CoachID: 3, Name: "Idle"},
	}
	if len(admin.Coaches) != len(want) {
		t.Fatalf("Coaches = %+v", admin.Coaches)
	}
	for i := range want {
		if admin.Coaches[i] != want[i] {
			t.Errorf("Coaches[%d] = %+v, want %+v", i, admin.Coaches[i], want[i])
		}
	}
}

func TestComputeStats_TopDojoLimit(t *testing.T) {
	var athletes []Athlete
	for i := 0; i < 15; i++ {
		athletes = append(athletes, Athlete{AthleteRecord: AthleteRecord{Dojo: string(rune('A' + i))}})
	}
	s := ComputeStats(athletes, []Coach{})
	if len(s.TopDojos) != TopDojoLimit {
		t.Errorf("TopDojos = %d, want %d", len(s.TopDojos), TopDojoLimit)
	}
}
