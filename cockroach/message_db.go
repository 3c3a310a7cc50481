package cockroach

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/id"
	"github.com/nakamauwu/backchannel/types"
	"github.com/nicolasparada/go-db"
)

// SendMessage appends a message to the thread and bumps the thread
// last message time. Only accepted and pending participants may send.
func (c *Cockroach) SendMessage(ctx context.Context, in types.SendMessage) (types.Created, error) {
	var out types.Created
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		status, err := c.ParticipantStatus(ctx, in.ThreadID, in.LoggedInUserID())
		if errs.IsNotFound(err) {
			return errs.NewPermissionDeniedError("you are not a participant of this thread")
		}

		if err != nil {
			return err
		}

		if !status.CanSend() {
			return errs.NewPermissionDeniedError("you cannot send messages to this thread")
		}

		attachments := in.Attachments
		if attachments == nil {
			attachments = []types.Attachment{}
		}

		out, err = c.insertMessage(ctx, insertMessage{
			ThreadID:    in.ThreadID,
			SenderID:    in.LoggedInUserID(),
			Content:     in.Content,
			Attachments: attachments,
		})
		if err != nil {
			return err
		}

		return c.touchThread(ctx, in.ThreadID)
	})
}

type insertMessage struct {
	ThreadID    string
	SenderID    string
	Content     string
	Attachments []types.Attachment
}

func (c *Cockroach) insertMessage(ctx context.Context, in insertMessage) (types.Created, error) {
	var out types.Created

	const q = `
		INSERT INTO messages (id, thread_id, sender_id, content, attachments)
		VALUES (@message_id, @thread_id, @sender_id, @content, @attachments)
		RETURNING id, created_at
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"message_id":  id.Generate(),
		"thread_id":   in.ThreadID,
		"sender_id":   in.SenderID,
		"content":     in.Content,
		"attachments": in.Attachments,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert message: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Created])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted message: %w", err)
	}

	return out, nil
}

func (c *Cockroach) messages(ctx context.Context, threadID string) ([]types.Message, error) {
	q := `
		SELECT
			messages.id,
			messages.thread_id,
			messages.sender_id,
			messages.content,
			messages.attachments,
			messages.created_at,
			` + sqlUserJSON("users") + ` AS sender
		FROM messages
		INNER JOIN users ON messages.sender_id = users.id
		WHERE messages.thread_id = @thread_id
		ORDER BY messages.created_at ASC, messages.id ASC
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"thread_id": threadID,
	})
	if err != nil {
		return nil, fmt.Errorf("sql select messages: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Message])
	if err != nil {
		return nil, fmt.Errorf("sql collect messages: %w", err)
	}

	return out, nil
}

// DeleteMessage removes a message sent by the logged-in user
// and recomputes the thread last message time from what is left.
// Deleting a message that does not exist is not an error.
func (c *Cockroach) DeleteMessage(ctx context.Context, in types.DeleteMessage) (types.DeletedMessage, error) {
	var out types.DeletedMessage
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		msg, err := c.messageForUpdate(ctx, in.MessageID)
		if errs.IsNotFound(err) {
			return nil
		}

		if err != nil {
			return err
		}

		if msg.SenderID != in.LoggedInUserID() {
			return errs.NewPermissionDeniedError("you can only delete your own messages")
		}

		if err := c.deleteMessage(ctx, msg.ID); err != nil {
			return err
		}

		if err := c.recomputeThreadLastMessageAt(ctx, msg.ThreadID); err != nil {
			return err
		}

		out = types.DeletedMessage{
			ThreadID: msg.ThreadID,
			Deleted:  true,
		}

		return nil
	})
}

func (c *Cockroach) messageForUpdate(ctx context.Context, messageID string) (types.Message, error) {
	var out types.Message

	const q = `
		SELECT id, thread_id, sender_id
		FROM messages
		WHERE id = @message_id
		FOR UPDATE
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"message_id": messageID,
	})
	if err != nil {
		return out, fmt.Errorf("sql select message for update: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Message])
	if db.IsNotFoundError(err) {
		return out, errs.NewNotFoundError("message not found")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect message for update: %w", err)
	}

	return out, nil
}

func (c *Cockroach) deleteMessage(ctx context.Context, messageID string) error {
	const q = `
		DELETE FROM messages
		WHERE id = @message_id
	`

	_, err := c.db.Exec(ctx, q, pgx.StrictNamedArgs{
		"message_id": messageID,
	})
	if err != nil {
		return fmt.Errorf("sql delete message: %w", err)
	}

	return nil
}

// recomputeThreadLastMessageAt falls back to the current time
// when the thread has no messages left.
func (c *Cockroach) recomputeThreadLastMessageAt(ctx context.Context, threadID string) error {
	const q = `
		UPDATE threads
		SET last_message_at = COALESCE(
			(SELECT max(created_at) FROM messages WHERE thread_id = @thread_id),
			now()
		)
		WHERE id = @thread_id
	`

	_, err := c.db.Exec(ctx, q, pgx.StrictNamedArgs{
		"thread_id": threadID,
	})
	if err != nil {
		return fmt.Errorf("sql recompute thread last message at: %w", err)
	}

	return nil
}
