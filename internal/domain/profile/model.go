package profile

import (
	"math"
	"strings"
	"time"
)

const (
	GenderMale   = "남성"
	GenderFemale = "여성"

	MinNTRP  = 1.0
	MaxNTRP  = 7.0
	NTRPStep = 0.5

	MaxExperience = 80.0

	// EditCooldown is how long after a change the profile is reported as not editable.
	EditCooldown = 7 * 24 * time.Hour
)

var AgeGroups = []string{"10대", "20대", "30대", "40대", "50대", "60대 이상"}

// UserProfile is stored at users/{uid}. The derived fields are never persisted.
type UserProfile struct {
	ID           string    `firestore:"id" json:"id"`
	Name         string    `firestore:"name" json:"name"`
	Gender       string    `firestore:"gender" json:"gender"`
	AgeGroup     string    `firestore:"ageGroup" json:"ageGroup"`
	HomeCourt    string    `firestore:"homeCourt" json:"homeCourt"`
	NTRP         float64   `firestore:"ntrp" json:"ntrp"`
	Experience   float64   `firestore:"experience" json:"experience"`
	LastModified time.Time `firestore:"lastModified" json:"lastModified"`

	IsComplete   bool      `firestore:"-" json:"isComplete"`
	CanEdit      bool      `firestore:"-" json:"canEdit"`
	NextEditDate time.Time `firestore:"-" json:"nextEditDate"`
}

// Default is the placeholder profile written on sign-up.
func Default(uid string, now time.Time) UserProfile {
	p := UserProfile{
		ID:           uid,
		Name:         "Guest",
		Gender:       GenderMale,
		AgeGroup:     "20대",
		HomeCourt:    "",
		NTRP:         1.0,
		Experience:   0.5,
		LastModified: now.UTC(),
	}
	p.Derive(now)
	return p
}

// Derive fills IsComplete, CanEdit and NextEditDate relative to now.
func (p *UserProfile) Derive(now time.Time) {
	p.IsComplete = strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.HomeCourt) != ""
	p.NextEditDate = p.LastModified.Add(EditCooldown)
	p.CanEdit = p.LastModified.Before(now.Add(-EditCooldown))
}

// fillDefaults mirrors how partially written documents are read back. has
// reports whether a numeric field was stored at all; a stored zero is kept.
func (p *UserProfile) fillDefaults(has func(field string) bool) {
	if p.Gender == "" {
		p.Gender = GenderMale
	}
	if p.AgeGroup == "" {
		p.AgeGroup = "20대"
	}
	if !has("ntrp") {
		p.NTRP = 1.0
	}
	if !has("experience") {
		p.Experience = 0.5
	}
}

type UpdateProfileInput struct {
	Name       *string  `json:"name,omitempty"`
	Gender     *string  `json:"gender,omitempty"`
	AgeGroup   *string  `json:"ageGroup,omitempty"`
	HomeCourt  *string  `json:"homeCourt,omitempty"`
	NTRP       *float64 `json:"ntrp,omitempty"`
	Experience *float64 `json:"experience,omitempty"`
}

func (in *UpdateProfileInput) Trim() {
	for _, s := range []*string{in.Name, in.Gender, in.AgeGroup, in.HomeCourt} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

func IsValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale
}

func IsValidAgeGroup(a string) bool {
	for _, v := range AgeGroups {
		if v == a {
			return true
		}
	}
	return false
}

// IsValidNTRP accepts 1.0 to 7.0 in steps of 0.5.
func IsValidNTRP(v float64) bool {
	if v < MinNTRP || v > MaxNTRP {
		return false
	}
	steps := (v - MinNTRP) / NTRPStep
	return math.Abs(steps-math.Round(steps)) < 1e-9
}
