package cockroach

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"
	"github.com/nakamauwu/backchannel/id"
	"github.com/nakamauwu/backchannel/types"
)

const sqlNotificationCols = `
	notifications.id,
	notifications.user_id,
	notifications.creator_id,
	notifications.kind,
	notifications.post_id,
	notifications.comment_id,
	notifications.reply_comment_id,
	notifications.read,
	notifications.created_at`

// fanout creates the notification the action calls for, if any.
// It must run inside the same transaction as the action itself.
func (c *Cockroach) fanout(ctx context.Context, action types.Notifiable) (*types.Notification, error) {
	in, ok := action.Notification()
	if !ok {
		return nil, nil
	}

	n, err := c.createNotification(ctx, in)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

func (c *Cockroach) createNotification(ctx context.Context, in types.CreateNotification) (types.Notification, error) {
	var out types.Notification

	q := `
		INSERT INTO notifications (id, user_id, creator_id, kind, post_id, comment_id, reply_comment_id)
		VALUES (@notification_id, @user_id, @creator_id, @kind, @post_id, @comment_id, @reply_comment_id)
		RETURNING ` + sqlNotificationCols

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"notification_id":  id.Generate(),
		"user_id":          in.UserID,
		"creator_id":       in.CreatorID,
		"kind":             in.Kind,
		"post_id":          in.PostID,
		"comment_id":       in.CommentID,
		"reply_comment_id": in.ReplyCommentID,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert notification: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Notification])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted notification: %w", err)
	}

	return out, nil
}

// Notifications of the user, newest first.
func (c *Cockroach) Notifications(ctx context.Context, in types.ListNotifications) (types.Page[types.Notification], error) {
	var out types.Page[types.Notification]

	pageArgs, err := ParsePageArgs[time.Time](in.PageArgs)
	if err != nil {
		return out, err
	}

	args := pgx.StrictNamedArgs{"user_id": in.UserID()}
	filters := []string{"notifications.user_id = @user_id"}
	filters = addPageFilter(filters, args, pageArgs, "notifications.created_at", "notifications.id")

	query := fmt.Sprintf(`
		SELECT %s,
			%s AS creator
		FROM notifications
		INNER JOIN users AS creators ON notifications.creator_id = creators.id
		%s
		%s
		%s`,
		sqlNotificationCols,
		sqlUserJSON("creators"),
		where(filters),
		pageOrder(pageArgs, "notifications.created_at", "notifications.id"),
		pageLimit(pageArgs),
	)

	out.Items, err = pgxutil.Select(ctx, c.db, query, []any{args}, pgx.RowToStructByNameLax[types.Notification])
	if err != nil {
		return out, fmt.Errorf("sql select notifications: %w", err)
	}

	if err := applyPageInfo(&out, pageArgs, func(n types.Notification) Cursor[time.Time] {
		return Cursor[time.Time]{ID: n.ID, Value: n.CreatedAt}
	}); err != nil {
		return out, err
	}

	return out, nil
}

// ReadNotifications lists a page of notifications like [Cockroach.Notifications]
// and marks the unread ones within it as read, in a single transaction.
// Returned items keep their previous read state.
func (c *Cockroach) ReadNotifications(ctx context.Context, in types.ListNotifications) (types.Page[types.Notification], error) {
	var out types.Page[types.Notification]
	err := c.db.RunTx(ctx, func(ctx context.Context) error {
		page, err := c.Notifications(ctx, in)
		if err != nil {
			return err
		}

		var unread []string
		for _, n := range page.Items {
			if !n.Read {
				unread = append(unread, n.ID)
			}
		}

		if len(unread) != 0 {
			mark := types.MarkNotificationsAsRead{NotificationIDs: unread}
			mark.SetUserID(in.UserID())
			if err := c.MarkNotificationsAsRead(ctx, mark); err != nil {
				return err
			}
		}

		out = page
		return nil
	})
	if err != nil {
		return types.Page[types.Notification]{}, err
	}

	return out, nil
}

// MarkNotificationsAsRead marks only notifications owned by the user.
func (c *Cockroach) MarkNotificationsAsRead(ctx context.Context, in types.MarkNotificationsAsRead) error {
	args := pgx.StrictNamedArgs{"user_id": in.UserID()}
	filters := []string{"user_id = @user_id", "read = false"}

	if len(in.NotificationIDs) != 0 {
		args["notification_ids"] = in.NotificationIDs
		filters = append(filters, "id = ANY(@notification_ids)")
	}

	q := `UPDATE notifications SET read = true` + where(filters)

	_, err := c.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("sql update notifications read: %w", err)
	}

	return nil
}

func (c *Cockroach) UnreadNotificationsCount(ctx context.Context, userID string) (int, error) {
	const q = `
		SELECT count(*)
		FROM notifications
		WHERE user_id = @user_id AND read = false
	`

	args := pgx.StrictNamedArgs{"user_id": userID}
	count, err := pgxutil.SelectRow(ctx, c.db, q, []any{args}, pgx.RowTo[int])
	if err != nil {
		return 0, fmt.Errorf("sql count unread notifications: %w", err)
	}

	return count, nil
}
