package types

import (
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestNotifiable_Notification(t *testing.T) {
	tt := []struct {
		name   string
		action Notifiable
		want   CreateNotification
		wantOK bool
	}{
		{
			name:   "like_own_post",
			action: PostLiked{ActorID: "a", PostID: "p", PostAuthorID: "a"},
		},
		{
			name:   "like_post",
			action: PostLiked{ActorID: "a", PostID: "p", PostAuthorID: "b"},
			want: CreateNotification{
				UserID:    "b",
				CreatorID: "a",
				Kind:      NotificationKindLike,
				PostID:    strPtr("p"),
			},
			wantOK: true,
		},
		{
			name:   "comment_own_post",
			action: CommentCreated{ActorID: "a", PostID: "p", PostAuthorID: "a", CommentID: "c"},
		},
		{
			name:   "comment_post",
			action: CommentCreated{ActorID: "a", PostID: "p", PostAuthorID: "b", CommentID: "c"},
			want: CreateNotification{
				UserID:    "b",
				CreatorID: "a",
				Kind:      NotificationKindComment,
				PostID:    strPtr("p"),
				CommentID: strPtr("c"),
			},
			wantOK: true,
		},
		{
			name: "reply_notifies_parent_author_only",
			action: CommentCreated{
				ActorID:      "a",
				PostID:       "p",
				PostAuthorID: "b",
				CommentID:    "r",
				Parent:       &CommentAuthor{CommentID: "c", AuthorID: "d"},
			},
			want: CreateNotification{
				UserID:         "d",
				CreatorID:      "a",
				Kind:           NotificationKindCommentReply,
				PostID:         strPtr("p"),
				CommentID:      strPtr("c"),
				ReplyCommentID: strPtr("r"),
			},
			wantOK: true,
		},
		{
			name: "reply_to_self",
			action: CommentCreated{
				ActorID:      "a",
				PostID:       "p",
				PostAuthorID: "b",
				CommentID:    "r",
				Parent:       &CommentAuthor{CommentID: "c", AuthorID: "a"},
			},
		},
		{
			name: "reply_on_own_post_by_other",
			action: CommentCreated{
				ActorID:      "a",
				PostID:       "p",
				PostAuthorID: "a",
				CommentID:    "r",
				Parent:       &CommentAuthor{CommentID: "c", AuthorID: "d"},
			},
			want: CreateNotification{
				UserID:         "d",
				CreatorID:      "a",
				Kind:           NotificationKindCommentReply,
				PostID:         strPtr("p"),
				CommentID:      strPtr("c"),
				ReplyCommentID: strPtr("r"),
			},
			wantOK: true,
		},
		{
			name:   "like_own_comment",
			action: CommentLiked{ActorID: "a", PostID: "p", CommentID: "c", CommentAuthorID: "a"},
		},
		{
			name:   "like_comment",
			action: CommentLiked{ActorID: "a", PostID: "p", CommentID: "c", CommentAuthorID: "b"},
			want: CreateNotification{
				UserID:    "b",
				CreatorID: "a",
				Kind:      NotificationKindCommentLike,
				PostID:    strPtr("p"),
				CommentID: strPtr("c"),
			},
			wantOK: true,
		},
		{
			name:   "follow_self",
			action: UserFollowed{ActorID: "a", FolloweeID: "a"},
		},
		{
			name:   "follow",
			action: UserFollowed{ActorID: "a", FolloweeID: "b"},
			want: CreateNotification{
				UserID:    "b",
				CreatorID: "a",
				Kind:      NotificationKindFollow,
			},
			wantOK: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.action.Notification()
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}

			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}

			if ok && got.UserID == got.CreatorID {
				t.Error("recipient must never be the actor")
			}
		})
	}
}
