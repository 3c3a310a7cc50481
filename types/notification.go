package types

import (
	"time"

	"github.com/nakamauwu/backchannel/id"
	"github.com/nakamauwu/backchannel/validator"
)

type Notification struct {
	ID             string           `json:"id" db:"id"`
	UserID         string           `json:"userID" db:"user_id"`
	CreatorID      string           `json:"creatorID" db:"creator_id"`
	Kind           NotificationKind `json:"type" db:"kind"`
	PostID         *string          `json:"postID" db:"post_id"`
	CommentID      *string          `json:"commentID" db:"comment_id"`
	ReplyCommentID *string          `json:"replyCommentID" db:"reply_comment_id"`
	Read           bool             `json:"read" db:"read"`
	CreatedAt      time.Time        `json:"createdAt" db:"created_at"`

	Creator *User `json:"creator,omitempty" db:"creator"`
}

type NotificationKind string

func (k NotificationKind) String() string {
	return string(k)
}

const (
	NotificationKindLike         NotificationKind = "LIKE"
	NotificationKindComment      NotificationKind = "COMMENT"
	NotificationKindCommentReply NotificationKind = "COMMENT_REPLY"
	NotificationKindCommentLike  NotificationKind = "COMMENT_LIKE"
	NotificationKindFollow       NotificationKind = "FOLLOW"
)

type CreateNotification struct {
	UserID         string
	CreatorID      string
	Kind           NotificationKind
	PostID         *string
	CommentID      *string
	ReplyCommentID *string
}

// Notifiable is a social action that may notify someone.
// The bool result is false when the action must not notify,
// which is always the case when the actor would notify themselves.
type Notifiable interface {
	Notification() (CreateNotification, bool)
}

type PostLiked struct {
	ActorID      string
	PostID       string
	PostAuthorID string
}

func (e PostLiked) Notification() (CreateNotification, bool) {
	if e.ActorID == e.PostAuthorID {
		return CreateNotification{}, false
	}

	return CreateNotification{
		UserID:    e.PostAuthorID,
		CreatorID: e.ActorID,
		Kind:      NotificationKindLike,
		PostID:    &e.PostID,
	}, true
}

// CommentAuthor identifies a comment together with whoever wrote it.
type CommentAuthor struct {
	CommentID string
	AuthorID  string
}

type CommentCreated struct {
	ActorID      string
	PostID       string
	PostAuthorID string
	CommentID    string
	// Parent is set when the comment is a reply.
	Parent *CommentAuthor
}

// Notification of a top level comment goes to the post author.
// A reply only notifies the parent comment author, never the post author.
func (e CommentCreated) Notification() (CreateNotification, bool) {
	if e.Parent != nil {
		if e.ActorID == e.Parent.AuthorID {
			return CreateNotification{}, false
		}

		return CreateNotification{
			UserID:         e.Parent.AuthorID,
			CreatorID:      e.ActorID,
			Kind:           NotificationKindCommentReply,
			PostID:         &e.PostID,
			CommentID:      &e.Parent.CommentID,
			ReplyCommentID: &e.CommentID,
		}, true
	}

	if e.ActorID == e.PostAuthorID {
		return CreateNotification{}, false
	}

	return CreateNotification{
		UserID:    e.PostAuthorID,
		CreatorID: e.ActorID,
		Kind:      NotificationKindComment,
		PostID:    &e.PostID,
		CommentID: &e.CommentID,
	}, true
}

type CommentLiked struct {
	ActorID         string
	PostID          string
	CommentID       string
	CommentAuthorID string
}

func (e CommentLiked) Notification() (CreateNotification, bool) {
	if e.ActorID == e.CommentAuthorID {
		return CreateNotification{}, false
	}

	return CreateNotification{
		UserID:    e.CommentAuthorID,
		CreatorID: e.ActorID,
		Kind:      NotificationKindCommentLike,
		PostID:    &e.PostID,
		CommentID: &e.CommentID,
	}, true
}

type UserFollowed struct {
	ActorID    string
	FolloweeID string
}

func (e UserFollowed) Notification() (CreateNotification, bool) {
	if e.ActorID == e.FolloweeID {
		return CreateNotification{}, false
	}

	return CreateNotification{
		UserID:    e.FolloweeID,
		CreatorID: e.ActorID,
		Kind:      NotificationKindFollow,
	}, true
}

type ListNotifications struct {
	PageArgs PageArgs

	userID string
}

func (in *ListNotifications) SetUserID(userID string) {
	in.userID = userID
}

func (in ListNotifications) UserID() string {
	return in.userID
}

func (in *ListNotifications) Validate() error {
	return in.PageArgs.Validate()
}

// MarkNotificationsAsRead marks the given notifications as read.
// With no IDs every unread notification is marked.
type MarkNotificationsAsRead struct {
	NotificationIDs []string

	userID string
}

func (in *MarkNotificationsAsRead) SetUserID(userID string) {
	in.userID = userID
}

func (in MarkNotificationsAsRead) UserID() string {
	return in.userID
}

func (in *MarkNotificationsAsRead) Validate() error {
	v := validator.New()

	for _, notificationID := range in.NotificationIDs {
		if !id.Valid(notificationID) {
			v.AddError("NotificationIDs", "Notification ID is invalid")
			break
		}
	}

	return v.AsError()
}
