package types

import "time"

type InboxEventKind string

const (
	InboxEventThreadStarted   InboxEventKind = "thread_started"
	InboxEventMessageSent     InboxEventKind = "message_sent"
	InboxEventMessageDeleted  InboxEventKind = "message_deleted"
	InboxEventRequestAccepted InboxEventKind = "request_accepted"
	InboxEventRequestDeclined InboxEventKind = "request_declined"
)

// InboxEvent tells a user their inbox or requests view changed.
type InboxEvent struct {
	Kind     InboxEventKind `json:"kind" msgpack:"k"`
	ThreadID string         `json:"threadID" msgpack:"t"`
	ActorID  string         `json:"actorID" msgpack:"a"`
	At       time.Time      `json:"at" msgpack:"at"`
}

type RealtimeEventKind string

const (
	RealtimeEventInbox        RealtimeEventKind = "inbox"
	RealtimeEventNotification RealtimeEventKind = "notification"
)

type RealtimeEvent struct {
	Kind         RealtimeEventKind `json:"kind"`
	Inbox        *InboxEvent       `json:"inbox,omitempty"`
	Notification *Notification     `json:"notification,omitempty"`
}
