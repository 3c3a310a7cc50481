package types

import (
	"strings"
	"time"

	"github.com/nakamauwu/backchannel/id"
	"github.com/nakamauwu/backchannel/validator"
)

const maxMessageAttachments = 10

type Message struct {
	ID          string       `json:"id" db:"id"`
	ThreadID    string       `json:"threadID" db:"thread_id"`
	SenderID    string       `json:"senderID" db:"sender_id"`
	Content     string       `json:"content" db:"content"`
	Attachments []Attachment `json:"attachments" db:"attachments"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`

	Sender *User `json:"sender,omitempty" db:"sender"`
}

type SendMessage struct {
	ThreadID    string
	Content     string
	Attachments []Attachment

	loggedInUserID string
}

func (in *SendMessage) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in SendMessage) LoggedInUserID() string {
	return in.loggedInUserID
}

// Empty reports that there is nothing to send.
// Sending an empty message is a no-op, not a validation failure.
func (in SendMessage) Empty() bool {
	return in.Content == "" && len(in.Attachments) == 0
}

func (in *SendMessage) Validate() error {
	in.Content = strings.TrimSpace(in.Content)
	if in.Empty() {
		return nil
	}

	v := validator.New()

	if in.ThreadID == "" {
		v.AddError("ThreadID", "Thread ID is required")
	} else if !id.Valid(in.ThreadID) {
		v.AddError("ThreadID", "Thread ID is invalid")
	}

	if len(in.Attachments) > maxMessageAttachments {
		v.AddError("Attachments", "Too many attachments")
	}

	for _, a := range in.Attachments {
		v.Struct("Attachments", a)
	}

	return v.AsError()
}

type DeleteMessage struct {
	MessageID string

	loggedInUserID string
}

func (in *DeleteMessage) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in DeleteMessage) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *DeleteMessage) Validate() error {
	v := validator.New()

	if in.MessageID == "" {
		v.AddError("MessageID", "Message ID is required")
	} else if !id.Valid(in.MessageID) {
		v.AddError("MessageID", "Message ID is invalid")
	}

	return v.AsError()
}

// DeletedMessage is what is left to know after a message is gone.
type DeletedMessage struct {
	ThreadID string
	Deleted  bool
}
