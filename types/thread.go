package types

import (
	"strings"
	"time"

	"github.com/nakamauwu/backchannel/id"
	"github.com/nakamauwu/backchannel/validator"
)

type Thread struct {
	ID            string    `json:"id" db:"id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	LastMessageAt time.Time `json:"lastMessageAt" db:"last_message_at"`

	// Set on inbox and requests listings.
	LastMessage      *Message     `json:"lastMessage,omitempty" db:"last_message"`
	OtherParticipant *Participant `json:"otherParticipant,omitempty" db:"other_participant"`

	// Set when retrieving a single thread.
	Participants []Participant `json:"participants,omitempty" db:"-"`
	Messages     []Message     `json:"messages,omitempty" db:"-"`
}

// Orphaned reports whether a retrieved thread lost one of its
// two participants after a declined request.
func (t Thread) Orphaned() bool {
	return t.Participants != nil && len(t.Participants) < 2
}

type StartThread struct {
	OtherUserID string
	Content     string

	loggedInUserID string
}

func (in *StartThread) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in StartThread) LoggedInUserID() string {
	return in.loggedInUserID
}

// PairKey identifies the thread between both users regardless of who started it.
func (in StartThread) PairKey() string {
	return id.Pair(in.loggedInUserID, in.OtherUserID)
}

func (in *StartThread) Validate() error {
	v := validator.New()

	in.Content = strings.TrimSpace(in.Content)

	if in.OtherUserID == "" {
		v.AddError("OtherUserID", "Other user ID is required")
	} else if !id.Valid(in.OtherUserID) {
		v.AddError("OtherUserID", "Other user ID is invalid")
	}

	return v.AsError()
}

type RetrieveThread struct {
	ThreadID string

	loggedInUserID string
}

func (in *RetrieveThread) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in RetrieveThread) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *RetrieveThread) Validate() error {
	return validateThreadID(in.ThreadID)
}

type ListThreads struct {
	Status ParticipantStatus

	loggedInUserID string
}

func (in *ListThreads) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in ListThreads) LoggedInUserID() string {
	return in.loggedInUserID
}

// AnswerRequest is the input of both accepting and declining
// a pending thread request.
type AnswerRequest struct {
	ThreadID string

	loggedInUserID string
}

func (in *AnswerRequest) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in AnswerRequest) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *AnswerRequest) Validate() error {
	return validateThreadID(in.ThreadID)
}

func validateThreadID(threadID string) error {
	v := validator.New()

	if threadID == "" {
		v.AddError("ThreadID", "Thread ID is required")
	} else if !id.Valid(threadID) {
		v.AddError("ThreadID", "Thread ID is invalid")
	}

	return v.AsError()
}

// AnsweredRequest is the outcome of accepting or declining a request.
// Answered is false when the caller had no participant row to change.
type AnsweredRequest struct {
	Answered bool
}
