package service

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"

	"github.com/nakamauwu/backchannel/types"
)

type inboxDelivery struct {
	UserID string
	Event  types.InboxEvent
}

type recordingBus struct {
	mu            sync.Mutex
	inbox         []inboxDelivery
	notifications []types.Notification
}

func (b *recordingBus) PublishInboxEvent(userID string, ev types.InboxEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inbox = append(b.inbox, inboxDelivery{UserID: userID, Event: ev})
	return nil
}

func (b *recordingBus) PublishNotification(notification types.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = append(b.notifications, notification)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, userID string) (<-chan types.RealtimeEvent, error) {
	return nil, errors.New("not implemented")
}

// inboxRecipients of events of the given kind, sorted.
func (b *recordingBus) inboxRecipients(kind types.InboxEventKind) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []string
	for _, d := range b.inbox {
		if d.Event.Kind == kind {
			out = append(out, d.UserID)
		}
	}
	slices.Sort(out)
	return out
}

func (b *recordingBus) notificationCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notifications)
}

type fakeObjectStore struct {
	mu       sync.Mutex
	uploaded []types.Upload
	contents map[string][]byte
	err      error
}

func (s *fakeObjectStore) UploadMany(ctx context.Context, bucket string, files []types.Upload) (func(), error) {
	if s.err != nil {
		return nil, s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contents == nil {
		s.contents = map[string][]byte{}
	}

	for _, f := range files {
		b, err := io.ReadAll(f.Reader())
		if err != nil {
			return nil, err
		}
		s.contents[f.Path] = b
		s.uploaded = append(s.uploaded, f)
	}

	return func() {}, nil
}

func (s *fakeObjectStore) ObjectURL(bucket, path string) string {
	return "https://cdn.example.org/" + bucket + "/" + path
}
