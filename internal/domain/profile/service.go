package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courtmate/backend/internal/observability"
)

// ParticipantSync refreshes the profile snapshot kept on participant records.
type ParticipantSync interface {
	SyncParticipantProfile(ctx context.Context, p UserProfile) error
}

type Service struct {
	store Store
	sync  ParticipantSync
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// SetParticipantSync wires the room ledger after both services exist.
func (s *Service) SetParticipantSync(sync ParticipantSync) {
	s.sync = sync
}

// GetProfile loads a profile with its derived fields.
func (s *Service) GetProfile(ctx context.Context, uid string) (*UserProfile, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrBadRequest)
	}

	p, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	p.Derive(s.now())
	return p, nil
}

// EnsureProfile creates the placeholder profile on first sign-in and returns the
// stored one otherwise.
func (s *Service) EnsureProfile(ctx context.Context, uid string) (*UserProfile, bool, error) {
	p, err := s.GetProfile(ctx, uid)
	if err == nil {
		return p, false, nil
	}
	if !IsErrNotFound(err) {
		return nil, false, err
	}

	def := Default(uid, s.now())
	if err := s.store.Put(ctx, def); err != nil {
		return nil, false, err
	}
	return &def, true, nil
}

// UpdateProfile applies the given fields, stamps lastModified and refreshes the
// participant snapshots in every room the user belongs to. The edit cooldown is
// reported through CanEdit but not enforced here.
func (s *Service) UpdateProfile(ctx context.Context, uid string, in UpdateProfileInput) (*UserProfile, error) {
	in.Trim()

	p, err := s.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrBadRequest)
		}
		p.Name = *in.Name
	}
	if in.Gender != nil {
		if !IsValidGender(*in.Gender) {
			return nil, fmt.Errorf("%w: gender must be %s or %s", ErrBadRequest, GenderMale, GenderFemale)
		}
		p.Gender = *in.Gender
	}
	if in.AgeGroup != nil {
		if !IsValidAgeGroup(*in.AgeGroup) {
			return nil, fmt.Errorf("%w: ageGroup must be one of %s", ErrBadRequest, strings.Join(AgeGroups, ", "))
		}
		p.AgeGroup = *in.AgeGroup
	}
	if in.HomeCourt != nil {
		p.HomeCourt = *in.HomeCourt
	}
	if in.NTRP != nil {
		if !IsValidNTRP(*in.NTRP) {
			return nil, fmt.Errorf("%w: ntrp must be between 1.0 and 7.0 in 0.5 steps", ErrBadRequest)
		}
		p.NTRP = *in.NTRP
	}
	if in.Experience != nil {
		if *in.Experience < 0 || *in.Experience > MaxExperience {
			return nil, fmt.Errorf("%w: experience must be between 0 and %.0f years", ErrBadRequest, MaxExperience)
		}
		p.Experience = *in.Experience
	}

	now := s.now()
	p.LastModified = now.UTC()
	if err := s.store.Put(ctx, *p); err != nil {
		return nil, err
	}
	p.Derive(now)

	if s.sync != nil {
		if err := s.sync.SyncParticipantProfile(ctx, *p); err != nil {
			// snapshots catch up on the next save
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("uid", uid).Msg("participant profile sync failed")
		}
	}

	return p, nil
}
