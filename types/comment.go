package types

import (
	"time"
	"unicode/utf8"

	"github.com/nakamauwu/backchannel/id"
	"github.com/nakamauwu/backchannel/textutil"
	"github.com/nakamauwu/backchannel/validator"
)

type Comment struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userID" db:"user_id"`
	PostID    string    `json:"postID" db:"post_id"`
	ParentID  *string   `json:"parentID" db:"parent_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type CreateComment struct {
	PostID   string
	ParentID *string
	Content  string

	userID string
}

func (in *CreateComment) SetUserID(userID string) {
	in.userID = userID
}

func (in CreateComment) UserID() string {
	return in.userID
}

func (in CreateComment) IsReply() bool {
	return in.ParentID != nil
}

func (in *CreateComment) Validate() error {
	v := validator.New()

	in.Content = textutil.SmartTrim(in.Content)

	if !id.Valid(in.PostID) {
		v.AddError("PostID", "PostID must be a valid ID")
	}

	if in.ParentID != nil && !id.Valid(*in.ParentID) {
		v.AddError("ParentID", "ParentID must be a valid ID")
	}

	if in.Content == "" {
		v.AddError("Content", "Content cannot be empty")
	}
	if utf8.RuneCountInString(in.Content) > 1000 {
		v.AddError("Content", "Content cannot exceed 1000 characters")
	}

	return v.AsError()
}

type CreatedComment struct {
	Created

	// Notification is set when the comment notified someone.
	Notification *Notification `json:"-"`
}

type ToggleCommentLike struct {
	CommentID string

	loggedInUserID string
}

func (in *ToggleCommentLike) SetLoggedInUserID(userID string) {
	in.loggedInUserID = userID
}

func (in ToggleCommentLike) LoggedInUserID() string {
	return in.loggedInUserID
}

func (in *ToggleCommentLike) Validate() error {
	v := validator.New()

	if !id.Valid(in.CommentID) {
		v.AddError("CommentID", "CommentID must be a valid ID")
	}

	return v.AsError()
}
