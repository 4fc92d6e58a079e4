package room

import (
	"strings"
	"time"

	"courtmate/backend/internal/domain/profile"
)

const (
	StatusRecruiting = "모집중"
	StatusClosed     = "마감"

	RoleHost        = "host"
	RoleParticipant = "participant"

	GameMenSingles   = "남자 단식"
	GameWomenSingles = "여자 단식"
	GameMenDoubles   = "남자 복식"
	GameWomenDoubles = "여자 복식"
	GameMixedDoubles = "혼합 복식"
)

var GameTypes = []string{GameMenSingles, GameWomenSingles, GameMenDoubles, GameWomenDoubles, GameMixedDoubles}

func IsValidGameType(t string) bool {
	for _, v := range GameTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Room is stored at chatRooms/{roomId}.
type Room struct {
	ID            string    `firestore:"-" json:"id"`
	CourtName     string    `firestore:"courtName" json:"courtName"`
	CourtNumber   string    `firestore:"courtNumber" json:"courtNumber"`
	Date          time.Time `firestore:"date" json:"date"`
	StartTime     time.Time `firestore:"startTime" json:"startTime"`
	EndTime       time.Time `firestore:"endTime" json:"endTime"`
	GameType      string    `firestore:"gameType" json:"gameType"`
	NTRP          float64   `firestore:"ntrp" json:"ntrp"`
	MaleCount     int       `firestore:"maleCount" json:"maleCount"`
	FemaleCount   int       `firestore:"femaleCount" json:"femaleCount"`
	HostID        string    `firestore:"hostId" json:"hostId"`
	BannedUserIDs []string  `firestore:"bannedUserIds" json:"bannedUserIds"`
	Status        string    `firestore:"status" json:"status"`
	IsClosed      bool      `firestore:"isClosed" json:"isClosed"`
	CreatedAt     time.Time `firestore:"createdAt" json:"createdAt"`

	IsFinished bool `firestore:"-" json:"isFinished"`
}

// Capacity is the number of non-host seats.
func (r Room) Capacity() int {
	return r.MaleCount + r.FemaleCount
}

func (r Room) IsBanned(uid string) bool {
	for _, id := range r.BannedUserIDs {
		if id == uid {
			return true
		}
	}
	return false
}

func (r *Room) derive(now time.Time) {
	if r.BannedUserIDs == nil {
		r.BannedUserIDs = []string{}
	}
	r.IsFinished = r.EndTime.Before(now)
}

// Participant is stored at chatRooms/{roomId}/participants/{uid} and carries a
// snapshot of the user's profile taken at join time.
type Participant struct {
	ID          string    `firestore:"id" json:"id"`
	Name        string    `firestore:"name" json:"name"`
	Gender      string    `firestore:"gender" json:"gender"`
	NTRP        float64   `firestore:"ntrp" json:"ntrp"`
	Experience  float64   `firestore:"experience" json:"experience"`
	AgeGroup    string    `firestore:"ageGroup" json:"ageGroup"`
	HomeCourt   string    `firestore:"homeCourt" json:"homeCourt"`
	IsHost      bool      `firestore:"isHost" json:"isHost"`
	IsConfirmed bool      `firestore:"isConfirmed" json:"isConfirmed"`
	Role        string    `firestore:"role" json:"role"`
	JoinedAt    time.Time `firestore:"joinedAt" json:"joinedAt"`
}

func participantFromProfile(p profile.UserProfile, host bool, now time.Time) Participant {
	part := Participant{
		ID:         p.ID,
		Name:       p.Name,
		Gender:     p.Gender,
		NTRP:       p.NTRP,
		Experience: p.Experience,
		AgeGroup:   p.AgeGroup,
		HomeCourt:  p.HomeCourt,
		Role:       RoleParticipant,
		JoinedAt:   now.UTC(),
	}
	if host {
		part.IsHost = true
		part.IsConfirmed = true
		part.Role = RoleHost
	}
	return part
}

// Membership is the per-user projection kept at users/{uid}/memberships/{roomId}.
type Membership struct {
	RoomID          string `firestore:"roomId" json:"roomId"`
	IsParticipating bool   `firestore:"isParticipating" json:"isParticipating"`
	IsConfirmed     bool   `firestore:"isConfirmed" json:"isConfirmed"`
	IsHost          bool   `firestore:"isHost" json:"isHost"`
}

func membershipOf(roomID string, p Participant) Membership {
	return Membership{
		RoomID:          roomID,
		IsParticipating: true,
		IsConfirmed:     p.IsConfirmed,
		IsHost:          p.IsHost,
	}
}

// Counts holds non-host participants by gender. Other gender values are not counted.
type Counts struct {
	Male   int `json:"male"`
	Female int `json:"female"`
}

func countParticipants(parts []Participant) Counts {
	var c Counts
	for _, p := range parts {
		if p.IsHost {
			continue
		}
		switch p.Gender {
		case profile.GenderMale:
			c.Male++
		case profile.GenderFemale:
			c.Female++
		}
	}
	return c
}

type CreateRoomInput struct {
	CourtName   string    `json:"courtName"`
	CourtNumber string    `json:"courtNumber"`
	Date        time.Time `json:"date"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	GameType    string    `json:"gameType"`
	NTRP        float64   `json:"ntrp"`
	MaleCount   int       `json:"maleCount"`
	FemaleCount int       `json:"femaleCount"`
}

func (in *CreateRoomInput) Trim() {
	in.CourtName = strings.TrimSpace(in.CourtName)
	in.CourtNumber = strings.TrimSpace(in.CourtNumber)
	in.GameType = strings.TrimSpace(in.GameType)
}
