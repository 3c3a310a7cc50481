package types

import (
	"time"
	"unicode/utf8"

	"github.com/nakamauwu/backchannel/id"
	"github.com/nakamauwu/backchannel/textutil"
	"github.com/nakamauwu/backchannel/validator"
)

type Post struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userID" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type CreatePost struct {
	Content string

	userID string
}

func (in *CreatePost) SetUserID(userID string) {
	in.userID = userID
}

func (in CreatePost) UserID() string {
	return in.userID
}

func (in *CreatePost) Validate() error {
	v := validator.New()

	in.Content = textutil.SmartTrim(in.Content)

	if in.Content == "" {
		v.AddError("Content", "Content cannot be empty")
	}
	if utf8.RuneCountInString(in.Content) > 2000 {
		v.AddError("Content", "Content cannot exceed 2000 characters")
	}

	return v.AsError()
}

type TogglePostLike struct {
	PostID string

	loggedInUserID string
}

func (in *TogglePostLike) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in TogglePostLike) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *TogglePostLike) Validate() error {
	v := validator.New()

	if !id.Valid(in.PostID) {
		v.AddError("PostID", "PostID must be a valid ID")
	}

	return v.AsError()
}

type ToggledLike struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`

	// Notification is set when liking notified someone.
	Notification *Notification `json:"-"`
}
