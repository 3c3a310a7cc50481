package cockroach

import (
	"context"
	"testing"

	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/ptr"
	"github.com/nakamauwu/backchannel/types"
)

func notificationsOf(t *testing.T, user types.User) []types.Notification {
	t.Helper()

	in := types.ListNotifications{PageArgs: types.PageArgs{First: ptr.From(uint(100))}}
	in.SetUserID(user.ID)

	page, err := testCockroach.Notifications(context.Background(), in)
	if err != nil {
		t.Fatalf("could not list notifications: %v", err)
	}

	return page.Items
}

func TestCockroach_TogglePostLike(t *testing.T) {
	requireDB(t)

	ctx := context.Background()

	t.Run("own_post", func(t *testing.T) {
		author := genUser(t)
		post := genPost(t, author)

		in := types.TogglePostLike{PostID: post.ID}
		in.SetLoggedInUserID(author.ID)

		got, err := testCockroach.TogglePostLike(ctx, in)
		if err != nil {
			t.Fatal(err)
		}

		if !got.Liked || got.LikesCount != 1 || got.Notification != nil {
			t.Errorf("unexpected toggle result: %+v", got)
		}

		if n := notificationsOf(t, author); len(n) != 0 {
			t.Errorf("self like created %d notifications", len(n))
		}
	})

	t.Run("other_post", func(t *testing.T) {
		author := genUser(t)
		fan := genUser(t)
		post := genPost(t, author)

		in := types.TogglePostLike{PostID: post.ID}
		in.SetLoggedInUserID(fan.ID)

		got, err := testCockroach.TogglePostLike(ctx, in)
		if err != nil {
			t.Fatal(err)
		}

		if got.Notification == nil {
			t.Fatal("like should notify the author")
		}

		// unlike never notifies nor retracts.
		got, err = testCockroach.TogglePostLike(ctx, in)
		if err != nil {
			t.Fatal(err)
		}

		if got.Liked || got.LikesCount != 0 || got.Notification != nil {
			t.Errorf("unexpected unlike result: %+v", got)
		}

		n := notificationsOf(t, author)
		if len(n) != 1 {
			t.Fatalf("got %d notifications, want 1", len(n))
		}

		if n[0].Kind != types.NotificationKindLike || n[0].CreatorID != fan.ID || ptr.Or(n[0].PostID, "") != post.ID {
			t.Errorf("unexpected notification: %+v", n[0])
		}

		if n[0].Creator == nil || n[0].Creator.ID != fan.ID {
			t.Errorf("notification creator summary mismatch: %+v", n[0].Creator)
		}
	})

	t.Run("post_not_found", func(t *testing.T) {
		in := types.TogglePostLike{PostID: "cqf2ofg2lmqeuhtbe3s0"}
		in.SetLoggedInUserID(genUser(t).ID)

		_, err := testCockroach.TogglePostLike(ctx, in)
		if !errs.IsNotFound(err) {
			t.Errorf("got %v, want not found", err)
		}
	})
}

func TestCockroach_CreateComment(t *testing.T) {
	requireDB(t)

	ctx := context.Background()
	author := genUser(t)
	commenter := genUser(t)
	replier := genUser(t)
	post := genPost(t, author)

	top := types.CreateComment{PostID: post.ID, Content: "nice"}
	top.SetUserID(commenter.ID)

	comment, err := testCockroach.CreateComment(ctx, top)
	if err != nil {
		t.Fatal(err)
	}

	reply := types.CreateComment{PostID: post.ID, ParentID: &comment.ID, Content: "agreed"}
	reply.SetUserID(replier.ID)

	replied, err := testCockroach.CreateComment(ctx, reply)
	if err != nil {
		t.Fatal(err)
	}

	authorNotifications := notificationsOf(t, author)
	if len(authorNotifications) != 1 || authorNotifications[0].Kind != types.NotificationKindComment {
		t.Fatalf("post author should only get the top level comment notification, got %+v", authorNotifications)
	}

	commenterNotifications := notificationsOf(t, commenter)
	if len(commenterNotifications) != 1 {
		t.Fatalf("parent author got %d notifications, want 1", len(commenterNotifications))
	}

	n := commenterNotifications[0]
	if n.Kind != types.NotificationKindCommentReply ||
		ptr.Or(n.CommentID, "") != comment.ID ||
		ptr.Or(n.ReplyCommentID, "") != replied.ID ||
		ptr.Or(n.PostID, "") != post.ID {
		t.Errorf("unexpected reply notification: %+v", n)
	}

	t.Run("self_reply", func(t *testing.T) {
		in := types.CreateComment{PostID: post.ID, ParentID: &comment.ID, Content: "me again"}
		in.SetUserID(commenter.ID)

		got, err := testCockroach.CreateComment(ctx, in)
		if err != nil {
			t.Fatal(err)
		}

		if got.Notification != nil {
			t.Errorf("replying to oneself should not notify: %+v", got.Notification)
		}
	})

	t.Run("parent_from_other_post", func(t *testing.T) {
		other := genPost(t, author)
		in := types.CreateComment{PostID: other.ID, ParentID: &comment.ID, Content: "lost"}
		in.SetUserID(replier.ID)

		_, err := testCockroach.CreateComment(ctx, in)
		if !errs.IsNotFound(err) {
			t.Errorf("got %v, want not found", err)
		}
	})
}

func TestCockroach_ToggleCommentLike(t *testing.T) {
	requireDB(t)

	ctx := context.Background()
	author := genUser(t)
	fan := genUser(t)
	post := genPost(t, author)

	in := types.CreateComment{PostID: post.ID, Content: "first"}
	in.SetUserID(author.ID)

	comment, err := testCockroach.CreateComment(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	like := types.ToggleCommentLike{CommentID: comment.ID}
	like.SetLoggedInUserID(fan.ID)

	got, err := testCockroach.ToggleCommentLike(ctx, like)
	if err != nil {
		t.Fatal(err)
	}

	if !got.Liked || got.Notification == nil || got.Notification.Kind != types.NotificationKindCommentLike {
		t.Fatalf("unexpected toggle result: %+v", got)
	}

	if ptr.Or(got.Notification.PostID, "") != post.ID || ptr.Or(got.Notification.CommentID, "") != comment.ID {
		t.Errorf("notification references mismatch: %+v", got.Notification)
	}
}

func TestCockroach_ToggleFollow(t *testing.T) {
	requireDB(t)

	ctx := context.Background()
	alice := genUser(t)
	bob := genUser(t)

	in := types.ToggleFollow{FolloweeID: bob.ID}
	in.SetLoggedInUserID(alice.ID)

	got, err := testCockroach.ToggleFollow(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	if !got.Following || got.FollowersCount != 1 || got.Notification == nil {
		t.Errorf("unexpected follow result: %+v", got)
	}

	got, err = testCockroach.ToggleFollow(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	if got.Following || got.FollowersCount != 0 || got.Notification != nil {
		t.Errorf("unexpected unfollow result: %+v", got)
	}
}

func TestCockroach_Notifications(t *testing.T) {
	requireDB(t)

	ctx := context.Background()
	author := genUser(t)

	for range 5 {
		fan := genUser(t)
		in := types.ToggleFollow{FolloweeID: author.ID}
		in.SetLoggedInUserID(fan.ID)
		if _, err := testCockroach.ToggleFollow(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	in := types.ListNotifications{PageArgs: types.PageArgs{First: ptr.From(uint(3))}}
	in.SetUserID(author.ID)

	first, err := testCockroach.Notifications(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Items) != 3 || !first.PageInfo.HasNextPage || first.PageInfo.EndCursor == nil {
		t.Fatalf("unexpected first page: %+v", first.PageInfo)
	}

	in.PageArgs.After = first.PageInfo.EndCursor
	second, err := testCockroach.Notifications(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	if len(second.Items) != 2 || second.PageInfo.HasNextPage || !second.PageInfo.HasPreviousPage {
		t.Fatalf("unexpected second page: %d items, %+v", len(second.Items), second.PageInfo)
	}

	seen := map[string]bool{}
	for _, n := range append(first.Items, second.Items...) {
		if seen[n.ID] {
			t.Errorf("notification %q listed twice", n.ID)
		}
		seen[n.ID] = true
	}

	count, err := testCockroach.UnreadNotificationsCount(ctx, author.ID)
	if err != nil {
		t.Fatal(err)
	}

	if count != 5 {
		t.Errorf("unread count = %d, want 5", count)
	}

	mark := types.MarkNotificationsAsRead{NotificationIDs: []string{first.Items[0].ID}}
	mark.SetUserID(author.ID)
	if err := testCockroach.MarkNotificationsAsRead(ctx, mark); err != nil {
		t.Fatal(err)
	}

	count, err = testCockroach.UnreadNotificationsCount(ctx, author.ID)
	if err != nil {
		t.Fatal(err)
	}

	if count != 4 {
		t.Errorf("unread count after marking one = %d, want 4", count)
	}

	// Someone else cannot mark them.
	mark = types.MarkNotificationsAsRead{}
	mark.SetUserID(genUser(t).ID)
	if err := testCockroach.MarkNotificationsAsRead(ctx, mark); err != nil {
		t.Fatal(err)
	}

	count, err = testCockroach.UnreadNotificationsCount(ctx, author.ID)
	if err != nil {
		t.Fatal(err)
	}

	if count != 4 {
		t.Errorf("unread count after someone else marked = %d, want 4", count)
	}

	mark.SetUserID(author.ID)
	if err := testCockroach.MarkNotificationsAsRead(ctx, mark); err != nil {
		t.Fatal(err)
	}

	count, err = testCockroach.UnreadNotificationsCount(ctx, author.ID)
	if err != nil {
		t.Fatal(err)
	}

	if count != 0 {
		t.Errorf("unread count after marking all = %d, want 0", count)
	}
}

func TestCockroach_ReadNotifications(t *testing.T) {
	requireDB(t)

	ctx := context.Background()
	author := genUser(t)

	for range 5 {
		fan := genUser(t)
		in := types.ToggleFollow{FolloweeID: author.ID}
		in.SetLoggedInUserID(fan.ID)
		if _, err := testCockroach.ToggleFollow(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	in := types.ListNotifications{PageArgs: types.PageArgs{First: ptr.From(uint(3))}}
	in.SetUserID(author.ID)

	t.Run("marks_listed_page_only", func(t *testing.T) {
		page, err := testCockroach.ReadNotifications(ctx, in)
		if err != nil {
			t.Fatal(err)
		}

		if len(page.Items) != 3 {
			t.Fatalf("got %d items, want 3", len(page.Items))
		}

		for _, n := range page.Items {
			if n.Read {
				t.Errorf("notification %q should keep its previous read state", n.ID)
			}
		}

		count, err := testCockroach.UnreadNotificationsCount(ctx, author.ID)
		if err != nil {
			t.Fatal(err)
		}

		if count != 2 {
			t.Errorf("unread count = %d, want 2", count)
		}
	})

	t.Run("failure_returns_empty_page", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		page, err := testCockroach.ReadNotifications(canceled, in)
		if err == nil {
			t.Fatal("expected error")
		}

		if len(page.Items) != 0 {
			t.Errorf("got %d items along with the error", len(page.Items))
		}

		count, err := testCockroach.UnreadNotificationsCount(ctx, author.ID)
		if err != nil {
			t.Fatal(err)
		}

		if count != 2 {
			t.Errorf("unread count = %d, want 2", count)
		}
	})
}
