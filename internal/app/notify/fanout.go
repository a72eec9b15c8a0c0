package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"kinbrio/internal/app/model"
	"kinbrio/internal/pkg/errs"
)

// RoomLister loads the rooms of an organization in delivery order.
type RoomLister interface {
	ListRoomsByOrganization(ctx context.Context, organizationKey uuid.UUID) ([]model.Room, error)
}

// Chat is the subset of MatrixClient used for delivery.
type Chat interface {
	WhoAmI(ctx context.Context, homeServer, token string) (string, error)
	JoinedRooms(ctx context.Context, homeServer, token string) (map[string]struct{}, error)
	SendText(ctx context.Context, homeServer, token, roomID, text string) error
}

// Credentials identify the chat account a notification is sent as.
type Credentials struct {
	UserID      string
	AccessToken string
	HomeServer  string
}

// Fanout sends one message to every room subscribed to its category.
type Fanout struct {
	rooms RoomLister
	chat  Chat
}

func NewFanout(rooms RoomLister, chat Chat) *Fanout {
	return &Fanout{rooms: rooms, chat: chat}
}

// Notify delivers body to the organization's rooms whose category equals category.
// Rooms are handled one at a time and the first failure stops the rest.
func (f *Fanout) Notify(ctx context.Context, organizationKey uuid.UUID, category model.NotificationCategory, body string, creds Credentials) error {
	_, err := f.NotifyExcept(ctx, organizationKey, category, body, creds, nil)
	return err
}

// NotifyExcept is Notify that skips the rooms in done. It returns done plus every room
// delivered by this call, including when it stops on an error.
func (f *Fanout) NotifyExcept(ctx context.Context, organizationKey uuid.UUID, category model.NotificationCategory, body string, creds Credentials, done []uuid.UUID) ([]uuid.UUID, error) {
	delivered := append([]uuid.UUID(nil), done...)
	skip := make(map[uuid.UUID]struct{}, len(done))
	for _, k := range done {
		skip[k] = struct{}{}
	}

	rooms, err := f.rooms.ListRoomsByOrganization(ctx, organizationKey)
	if err != nil {
		return delivered, fmt.Errorf("list rooms: %w", err)
	}

	for _, room := range rooms {
		if room.MessageTypes != category {
			continue
		}
		if _, ok := skip[room.Key]; ok {
			continue
		}
		if err := f.send(ctx, room, body, creds); err != nil {
			return delivered, err
		}
		delivered = append(delivered, room.Key)
	}
	return delivered, nil
}

func (f *Fanout) send(ctx context.Context, room model.Room, body string, creds Credentials) error {
	if _, err := f.chat.WhoAmI(ctx, creds.HomeServer, creds.AccessToken); err != nil {
		return fmt.Errorf("room %s: restore session: %w", room.Key, err)
	}
	joined, err := f.chat.JoinedRooms(ctx, creds.HomeServer, creds.AccessToken)
	if err != nil {
		return fmt.Errorf("room %s: joined rooms: %w", room.Key, err)
	}
	if _, ok := joined[room.MatrixRoomID]; !ok {
		return errs.WithKind(errs.KindUpstream, fmt.Errorf("room %s: %s is not joined by %s", room.Key, room.MatrixRoomID, creds.UserID))
	}
	if err := f.chat.SendText(ctx, creds.HomeServer, creds.AccessToken, room.MatrixRoomID, body); err != nil {
		return fmt.Errorf("room %s: send: %w", room.Key, err)
	}
	return nil
}
