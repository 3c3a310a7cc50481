package nats

import (
	"context"
	"fmt"
	"strings"

	"github.com/nakamauwu/backchannel/types"
	natsgo "github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	inboxSubjectPrefix        = "inbox."
	notificationSubjectPrefix = "notifications."
)

func InboxSubject(userID string) string {
	return inboxSubjectPrefix + userID
}

func NotificationSubject(userID string) string {
	return notificationSubjectPrefix + userID
}

// NATS publishes inbox and notification events
// and fans them back out to realtime subscribers.
type NATS struct {
	conn    *natsgo.Conn
	errChan chan error
}

func New(conn *natsgo.Conn) *NATS {
	return &NATS{
		conn:    conn,
		errChan: make(chan error, 1),
	}
}

func Connect(url string) (*NATS, error) {
	conn, err := natsgo.Connect(url,
		natsgo.Name("backchannel"),
		natsgo.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return New(conn), nil
}

func (n *NATS) Errs() <-chan error {
	return n.errChan
}

func (n *NATS) Close() error {
	return n.conn.Drain()
}

func (n *NATS) PublishInboxEvent(userID string, ev types.InboxEvent) error {
	return n.publish(InboxSubject(userID), ev)
}

func (n *NATS) PublishNotification(notification types.Notification) error {
	return n.publish(NotificationSubject(notification.UserID), notification)
}

func (n *NATS) publish(subject string, v any) error {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("msgpack marshal %s event: %w", subject, err)
	}

	if err := n.conn.Publish(subject, b); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}

	return nil
}

// Subscribe delivers the events addressed to the user until ctx is done.
// Slow consumers lose events rather than block the connection.
func (n *NATS) Subscribe(ctx context.Context, userID string) (<-chan types.RealtimeEvent, error) {
	msgs := make(chan *natsgo.Msg, 64)

	inboxSub, err := n.conn.ChanSubscribe(InboxSubject(userID), msgs)
	if err != nil {
		return nil, fmt.Errorf("nats subscribe inbox: %w", err)
	}

	notificationSub, err := n.conn.ChanSubscribe(NotificationSubject(userID), msgs)
	if err != nil {
		_ = inboxSub.Unsubscribe()
		return nil, fmt.Errorf("nats subscribe notifications: %w", err)
	}

	out := make(chan types.RealtimeEvent, 16)

	go func() {
		defer close(out)
		defer notificationSub.Unsubscribe()
		defer inboxSub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				ev, err := DecodeEvent(msg.Subject, msg.Data)
				if err != nil {
					n.reportErr(err)
					continue
				}

				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (n *NATS) reportErr(err error) {
	select {
	case n.errChan <- err:
	default:
	}
}

// DecodeEvent turns a message received on subject back into an event.
func DecodeEvent(subject string, data []byte) (types.RealtimeEvent, error) {
	var out types.RealtimeEvent

	switch {
	case strings.HasPrefix(subject, inboxSubjectPrefix):
		var ev types.InboxEvent
		if err := msgpack.Unmarshal(data, &ev); err != nil {
			return out, fmt.Errorf("msgpack unmarshal inbox event: %w", err)
		}

		out.Kind = types.RealtimeEventInbox
		out.Inbox = &ev
	case strings.HasPrefix(subject, notificationSubjectPrefix):
		var notification types.Notification
		if err := msgpack.Unmarshal(data, &notification); err != nil {
			return out, fmt.Errorf("msgpack unmarshal notification: %w", err)
		}

		out.Kind = types.RealtimeEventNotification
		out.Notification = &notification
	default:
		return out, fmt.Errorf("unexpected subject %q", subject)
	}

	return out, nil
}
