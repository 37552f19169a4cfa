package core

import "time"

// Belt is a canonical belt colour.
type Belt string

const (
	BeltWhite  Belt = "White"
	BeltYellow Belt = "Yellow"
	BeltBlue   Belt = "Blue"
	BeltPurple Belt = "Purple"
	BeltGreen  Belt = "Green"
	BeltBrown  Belt = "Brown"
	BeltBlack  Belt = "Black"
)

// Belts lists every belt in grading order.
var Belts = []Belt{BeltWhite, BeltYellow, BeltBlue, BeltPurple, BeltGreen, BeltBrown, BeltBlack}

// Day is a canonical competition day.
type Day string

const (
	DaySaturday Day = "Saturday"
	DaySunday   Day = "Sunday"
)

// Gender is a canonical competition category.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// AthleteInput holds raw, unvalidated field values from a form or API call.
type AthleteInput struct {
	Name   string `json:"name"`
	DOB    string `json:"dob"`
	Dojo   string `json:"dojo"`
	Belt   string `json:"belt"`
	Day    string `json:"day"`
	Gender string `json:"gender"`
}

// AthleteRecord is a validated registration with canonical enumerations.
type AthleteRecord struct {
	Name   string
	DOB    time.Time // UTC midnight
	Dojo   string
	Belt   Belt
	Day    Day
	Gender Gender
}

// Input converts a record back into raw form. Validating the result yields
// the same record.
func (r AthleteRecord) Input() AthleteInput {
	return AthleteInput{
		Name:   r.Name,
		DOB:    FormatDate(r.DOB),
		Dojo:   r.Dojo,
		Belt:   string(r.Belt),
		Day:    string(r.Day),
		Gender: string(r.Gender),
	}
}

// Athlete is a persisted registration.
type Athlete struct {
	ID       int64
	UniqueID int64
	CoachID  int64
	AthleteRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Coach owns a set of athlete registrations.
type Coach struct {
	ID        int64
	Email     string
	Name      string
	GoogleID  string
	IsAdmin   bool
	CreatedAt time.Time
}

// Actor identifies who is calling a Service method.
type Actor struct {
	CoachID int64
	Admin   bool
}

// CanAccess reports whether the actor may read or modify an athlete owned by coachID.
func (a Actor) CanAccess(coachID int64) bool {
	return a.Admin || a.CoachID == coachID
}
