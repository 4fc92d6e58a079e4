package room

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"courtmate/backend/internal/domain/profile"
)

// Firestore write batches are capped at 500 operations.
const purgeChunk = 450

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func (r *Repo) roomsCol() *firestore.CollectionRef {
	return r.fs.Collection("chatRooms")
}

func (r *Repo) participantsCol(roomID string) *firestore.CollectionRef {
	return r.roomsCol().Doc(roomID).Collection("participants")
}

func (r *Repo) messagesCol(roomID string) *firestore.CollectionRef {
	return r.roomsCol().Doc(roomID).Collection("messages")
}

func (r *Repo) membershipRef(uid, roomID string) *firestore.DocumentRef {
	return r.fs.Collection("users").Doc(uid).Collection("memberships").Doc(roomID)
}

func decodeRoom(doc *firestore.DocumentSnapshot) (*Room, error) {
	var rm Room
	if err := doc.DataTo(&rm); err != nil {
		return nil, fmt.Errorf("failed to decode room: %w", err)
	}
	rm.ID = doc.Ref.ID
	if rm.BannedUserIDs == nil {
		rm.BannedUserIDs = []string{}
	}
	return &rm, nil
}

func decodeParticipants(docs []*firestore.DocumentSnapshot) ([]Participant, error) {
	out := make([]Participant, 0, len(docs))
	for _, doc := range docs {
		var p Participant
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("failed to decode participant: %w", err)
		}
		p.ID = doc.Ref.ID
		out = append(out, p)
	}
	return out, nil
}

func (r *Repo) CreateRoom(ctx context.Context, rm Room, host Participant) (*Room, error) {
	ref := r.roomsCol().NewDoc()
	if rm.ID != "" {
		ref = r.roomsCol().Doc(rm.ID)
	}
	rm.ID = ref.ID

	batch := r.fs.Batch()
	batch.Create(ref, rm)
	batch.Set(r.participantsCol(rm.ID).Doc(host.ID), host)
	batch.Set(r.membershipRef(host.ID, rm.ID), membershipOf(rm.ID, host))
	if _, err := batch.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return &rm, nil
}

func (r *Repo) GetRoom(ctx context.Context, roomID string) (*Room, error) {
	doc, err := r.roomsCol().Doc(roomID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	return decodeRoom(doc)
}

func (r *Repo) ListRooms(ctx context.Context) ([]Room, error) {
	iter := r.roomsCol().OrderBy("startTime", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	rooms := []Room{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list rooms: %w", err)
		}
		rm, err := decodeRoom(doc)
		if err != nil {
			continue
		}
		rooms = append(rooms, *rm)
	}
	return rooms, nil
}

func (r *Repo) CloseRoom(ctx context.Context, roomID string) error {
	_, err := r.roomsCol().Doc(roomID).Update(ctx, []firestore.Update{
		{Path: "status", Value: StatusClosed},
		{Path: "isClosed", Value: true},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	if err != nil {
		return fmt.Errorf("failed to close room: %w", err)
	}
	return nil
}

func (r *Repo) DeleteRoom(ctx context.Context, roomID string) error {
	roomRef := r.roomsCol().Doc(roomID)
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(roomRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
			}
			return fmt.Errorf("failed to load room: %w", err)
		}
		docs, err := tx.Documents(r.participantsCol(roomID)).GetAll()
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}

		for _, doc := range docs {
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
			if err := tx.Delete(r.membershipRef(doc.Ref.ID, roomID)); err != nil {
				return err
			}
		}
		return tx.Delete(roomRef)
	})
}

func (r *Repo) PurgeMessages(ctx context.Context, roomID string) (int, error) {
	total := 0
	for {
		docs, err := r.messagesCol(roomID).Limit(purgeChunk).Documents(ctx).GetAll()
		if err != nil {
			return total, fmt.Errorf("failed to list messages: %w", err)
		}
		if len(docs) == 0 {
			return total, nil
		}

		batch := r.fs.Batch()
		for _, doc := range docs {
			batch.Delete(doc.Ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return total, fmt.Errorf("failed to delete messages: %w", err)
		}
		total += len(docs)
	}
}

func (r *Repo) ListParticipants(ctx context.Context, roomID string) ([]Participant, error) {
	docs, err := r.participantsCol(roomID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return decodeParticipants(docs)
}

func (r *Repo) GetParticipant(ctx context.Context, roomID, uid string) (*Participant, error) {
	doc, err := r.participantsCol(roomID).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: participant %s", ErrNotFound, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}
	parts, err := decodeParticipants([]*firestore.DocumentSnapshot{doc})
	if err != nil {
		return nil, err
	}
	return &parts[0], nil
}

// AddParticipant reads the room and roster inside the transaction, so
// Firestore retries the admit check whenever a concurrent join commits first.
func (r *Repo) AddParticipant(ctx context.Context, roomID string, p Participant, admit AdmitFunc) error {
	roomRef := r.roomsCol().Doc(roomID)
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(roomRef)
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
		}
		if err != nil {
			return fmt.Errorf("failed to load room: %w", err)
		}
		rm, err := decodeRoom(doc)
		if err != nil {
			return err
		}

		docs, err := tx.Documents(r.participantsCol(roomID)).GetAll()
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		existing, err := decodeParticipants(docs)
		if err != nil {
			return err
		}

		if admit != nil {
			if err := admit(*rm, existing); err != nil {
				return err
			}
		}

		if err := tx.Set(r.participantsCol(roomID).Doc(p.ID), p); err != nil {
			return err
		}
		return tx.Set(r.membershipRef(p.ID, roomID), membershipOf(roomID, p))
	})
}

func (r *Repo) SetConfirmed(ctx context.Context, roomID, uid string) error {
	partRef := r.participantsCol(roomID).Doc(uid)
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(partRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: participant %s", ErrNotFound, uid)
			}
			return fmt.Errorf("failed to load participant: %w", err)
		}
		if err := tx.Update(partRef, []firestore.Update{{Path: "isConfirmed", Value: true}}); err != nil {
			return err
		}
		return tx.Set(r.membershipRef(uid, roomID), map[string]interface{}{
			"roomId":          roomID,
			"isParticipating": true,
			"isConfirmed":     true,
		}, firestore.MergeAll)
	})
}

func (r *Repo) RemoveParticipant(ctx context.Context, roomID, uid string) error {
	batch := r.fs.Batch()
	batch.Delete(r.participantsCol(roomID).Doc(uid))
	batch.Delete(r.membershipRef(uid, roomID))
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return nil
}

func (r *Repo) BanParticipant(ctx context.Context, roomID, uid string) error {
	roomRef := r.roomsCol().Doc(roomID)
	return r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(roomRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
			}
			return fmt.Errorf("failed to load room: %w", err)
		}
		if err := tx.Update(roomRef, []firestore.Update{
			{Path: "bannedUserIds", Value: firestore.ArrayUnion(uid)},
		}); err != nil {
			return err
		}
		if err := tx.Delete(r.participantsCol(roomID).Doc(uid)); err != nil {
			return err
		}
		return tx.Delete(r.membershipRef(uid, roomID))
	})
}

func (r *Repo) Memberships(ctx context.Context, uid string) (map[string]Membership, error) {
	iter := r.fs.Collection("users").Doc(uid).Collection("memberships").Documents(ctx)
	defer iter.Stop()

	out := map[string]Membership{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list memberships: %w", err)
		}
		var m Membership
		if err := doc.DataTo(&m); err != nil {
			continue
		}
		m.RoomID = doc.Ref.ID
		m.IsParticipating = true
		out[m.RoomID] = m
	}
	return out, nil
}

func (r *Repo) UpdateParticipantProfile(ctx context.Context, p profile.UserProfile) error {
	memberships, err := r.Memberships(ctx, p.ID)
	if err != nil {
		return err
	}
	if len(memberships) == 0 {
		return nil
	}

	updates := []firestore.Update{
		{Path: "name", Value: p.Name},
		{Path: "gender", Value: p.Gender},
		{Path: "ntrp", Value: p.NTRP},
		{Path: "experience", Value: p.Experience},
		{Path: "ageGroup", Value: p.AgeGroup},
		{Path: "homeCourt", Value: p.HomeCourt},
	}

	batch := r.fs.Batch()
	count := 0
	for roomID := range memberships {
		batch.Update(r.participantsCol(roomID).Doc(p.ID), updates)
		count++
		if count%purgeChunk == 0 {
			if _, err := batch.Commit(ctx); err != nil {
				return fmt.Errorf("failed to update participant profiles: %w", err)
			}
			batch = r.fs.Batch()
		}
	}
	if count%purgeChunk != 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("failed to update participant profiles: %w", err)
		}
	}
	return nil
}
