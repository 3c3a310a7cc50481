package types

import "time"

type Participant struct {
	ID         string            `json:"id" db:"id"`
	ThreadID   string            `json:"threadID" db:"thread_id"`
	UserID     string            `json:"userID" db:"user_id"`
	Status     ParticipantStatus `json:"status" db:"status"`
	LastReadAt *time.Time        `json:"lastReadAt" db:"last_read_at"`

	User *User `json:"user,omitempty" db:"user"`
}

type ParticipantStatus string

const (
	ParticipantStatusPending  ParticipantStatus = "PENDING"  // user who received the thread request
	ParticipantStatusAccepted ParticipantStatus = "ACCEPTED" // user who started the thread or accepted the request
)

func (ps ParticipantStatus) String() string {
	return string(ps)
}

// CanSend reports whether a participant with this status may post messages.
// The pending side is allowed to reply before formally accepting.
func (ps ParticipantStatus) CanSend() bool {
	return ps == ParticipantStatusAccepted || ps == ParticipantStatusPending
}
