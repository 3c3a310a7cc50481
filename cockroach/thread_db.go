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

// StartThread finds or creates the thread between the logged-in user and
// the other user. The pair key unique constraint keeps a single thread per
// pair even under concurrent calls. A participant that left the thread
// after declining is added back as pending.
func (c *Cockroach) StartThread(ctx context.Context, in types.StartThread) (types.Created, error) {
	var out types.Created
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		thread, err := c.upsertThread(ctx, in.PairKey())
		if err != nil {
			return err
		}

		if err := c.insertParticipants(ctx, thread.ID, in.LoggedInUserID(), in.OtherUserID); err != nil {
			return err
		}

		if in.Content != "" {
			_, err := c.insertMessage(ctx, insertMessage{
				ThreadID:    thread.ID,
				SenderID:    in.LoggedInUserID(),
				Content:     in.Content,
				Attachments: []types.Attachment{},
			})
			if err != nil {
				return err
			}

			if err := c.touchThread(ctx, thread.ID); err != nil {
				return err
			}
		}

		out = thread

		return nil
	})
}

func (c *Cockroach) upsertThread(ctx context.Context, pairKey string) (types.Created, error) {
	var out types.Created

	const insertQuery = `
		INSERT INTO threads (id, pair_key)
		VALUES (@thread_id, @pair_key)
		ON CONFLICT (pair_key) DO NOTHING
		RETURNING id, created_at
	`

	rows, err := c.db.Query(ctx, insertQuery, pgx.StrictNamedArgs{
		"thread_id": id.Generate(),
		"pair_key":  pairKey,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert thread: %w", err)
	}

	inserted, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Created])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted thread: %w", err)
	}

	if len(inserted) != 0 {
		return inserted[0], nil
	}

	const selectQuery = `
		SELECT id, created_at
		FROM threads
		WHERE pair_key = @pair_key
	`

	rows, err = c.db.Query(ctx, selectQuery, pgx.StrictNamedArgs{
		"pair_key": pairKey,
	})
	if err != nil {
		return out, fmt.Errorf("sql select thread by pair key: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Created])
	if err != nil {
		return out, fmt.Errorf("sql collect thread by pair key: %w", err)
	}

	return out, nil
}

func (c *Cockroach) insertParticipants(ctx context.Context, threadID, userID, otherUserID string) error {
	const q = `
		INSERT INTO participants (id, thread_id, user_id, status)
		VALUES (@participant_id, @thread_id, @user_id, @accepted)
			 , (@other_participant_id, @thread_id, @other_user_id, @pending)
		ON CONFLICT (thread_id, user_id) DO NOTHING
	`

	_, err := c.db.Exec(ctx, q, pgx.StrictNamedArgs{
		"participant_id":       id.Generate(),
		"other_participant_id": id.Generate(),
		"thread_id":            threadID,
		"user_id":              userID,
		"other_user_id":        otherUserID,
		"accepted":             types.ParticipantStatusAccepted,
		"pending":              types.ParticipantStatusPending,
	})
	if db.IsForeignKeyViolationError(err, "user_id") {
		return errs.NewNotFoundError("user not found")
	}

	if err != nil {
		return fmt.Errorf("sql insert participants: %w", err)
	}

	return nil
}

// Threads lists the threads where the logged-in user participates
// with the given status, most recently active first.
func (c *Cockroach) Threads(ctx context.Context, in types.ListThreads) ([]types.Thread, error) {
	q := `
		SELECT
			threads.id,
			threads.created_at,
			threads.last_message_at,
			(
				SELECT json_build_object(
					'id', messages.id,
					'threadID', messages.thread_id,
					'senderID', messages.sender_id,
					'content', messages.content,
					'attachments', messages.attachments,
					'createdAt', messages.created_at
				)
				FROM messages
				WHERE messages.thread_id = threads.id
				ORDER BY messages.created_at DESC, messages.id DESC
				LIMIT 1
			) AS last_message,
			(
				SELECT json_build_object(
					'id', others.id,
					'threadID', others.thread_id,
					'userID', others.user_id,
					'status', others.status,
					'lastReadAt', others.last_read_at,
					'user', ` + sqlUserJSON("users") + `
				)
				FROM participants AS others
				INNER JOIN users ON others.user_id = users.id
				WHERE others.thread_id = threads.id AND others.user_id != @user_id
				LIMIT 1
			) AS other_participant
		FROM participants
		INNER JOIN threads ON participants.thread_id = threads.id
		WHERE participants.user_id = @user_id AND participants.status = @status
		ORDER BY threads.last_message_at DESC, threads.id DESC
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"user_id": in.LoggedInUserID(),
		"status":  in.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("sql select threads: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Thread])
	if err != nil {
		return nil, fmt.Errorf("sql collect threads: %w", err)
	}

	return out, nil
}

// Thread retrieves a thread with its participants and its messages oldest
// first, stamping the logged-in user last read time.
func (c *Cockroach) Thread(ctx context.Context, in types.RetrieveThread) (types.Thread, error) {
	var out types.Thread
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		thread, err := c.thread(ctx, in.ThreadID)
		if err != nil {
			return err
		}

		marked, err := c.markThreadAsRead(ctx, in.ThreadID, in.LoggedInUserID())
		if err != nil {
			return err
		}

		if !marked {
			return errs.NewPermissionDeniedError("you are not a participant of this thread")
		}

		thread.Participants, err = c.participants(ctx, in.ThreadID)
		if err != nil {
			return err
		}

		thread.Messages, err = c.messages(ctx, in.ThreadID)
		if err != nil {
			return err
		}

		out = thread

		return nil
	})
}

func (c *Cockroach) thread(ctx context.Context, threadID string) (types.Thread, error) {
	var out types.Thread

	const q = `
		SELECT id, created_at, last_message_at
		FROM threads
		WHERE id = @thread_id
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"thread_id": threadID,
	})
	if err != nil {
		return out, fmt.Errorf("sql select thread: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Thread])
	if db.IsNotFoundError(err) {
		return out, errs.NewNotFoundError("thread not found")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect thread: %w", err)
	}

	return out, nil
}

func (c *Cockroach) markThreadAsRead(ctx context.Context, threadID, userID string) (bool, error) {
	const q = `
		UPDATE participants
		SET last_read_at = now()
		WHERE thread_id = @thread_id AND user_id = @user_id
		RETURNING id
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"thread_id": threadID,
		"user_id":   userID,
	})
	if err != nil {
		return false, fmt.Errorf("sql update participant last read at: %w", err)
	}

	updated, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return false, fmt.Errorf("sql collect updated participant: %w", err)
	}

	return len(updated) != 0, nil
}

func (c *Cockroach) participants(ctx context.Context, threadID string) ([]types.Participant, error) {
	q := `
		SELECT
			participants.id,
			participants.thread_id,
			participants.user_id,
			participants.status,
			participants.last_read_at,
			` + sqlUserJSON("users") + ` AS "user"
		FROM participants
		INNER JOIN users ON participants.user_id = users.id
		WHERE participants.thread_id = @thread_id
		ORDER BY participants.id
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"thread_id": threadID,
	})
	if err != nil {
		return nil, fmt.Errorf("sql select participants: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[types.Participant])
	if err != nil {
		return nil, fmt.Errorf("sql collect participants: %w", err)
	}

	return out, nil
}

// ParticipantStatus of the user in the thread.
// It fails with not found when the user has no participant row.
func (c *Cockroach) ParticipantStatus(ctx context.Context, threadID, userID string) (types.ParticipantStatus, error) {
	const q = `
		SELECT status
		FROM participants
		WHERE thread_id = @thread_id AND user_id = @user_id
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"thread_id": threadID,
		"user_id":   userID,
	})
	if err != nil {
		return "", fmt.Errorf("sql select participant status: %w", err)
	}

	out, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[types.ParticipantStatus])
	if db.IsNotFoundError(err) {
		return "", errs.NewNotFoundError("participant not found")
	}

	if err != nil {
		return "", fmt.Errorf("sql collect participant status: %w", err)
	}

	return out, nil
}

// ThreadUserIDs returns the users that still participate in the thread.
func (c *Cockroach) ThreadUserIDs(ctx context.Context, threadID string) ([]string, error) {
	const q = `
		SELECT user_id
		FROM participants
		WHERE thread_id = @thread_id
		ORDER BY user_id
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"thread_id": threadID,
	})
	if err != nil {
		return nil, fmt.Errorf("sql select thread user ids: %w", err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("sql collect thread user ids: %w", err)
	}

	return out, nil
}

// AcceptRequest sets the logged-in user participant status to accepted.
// It does nothing when there is no such participant.
func (c *Cockroach) AcceptRequest(ctx context.Context, in types.AnswerRequest) (types.AnsweredRequest, error) {
	var out types.AnsweredRequest

	const q = `
		UPDATE participants
		SET status = @accepted
		WHERE thread_id = @thread_id AND user_id = @user_id
		RETURNING id
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"thread_id": in.ThreadID,
		"user_id":   in.LoggedInUserID(),
		"accepted":  types.ParticipantStatusAccepted,
	})
	if err != nil {
		return out, fmt.Errorf("sql update participant status: %w", err)
	}

	updated, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return out, fmt.Errorf("sql collect updated participant: %w", err)
	}

	out.Answered = len(updated) != 0

	return out, nil
}

// DeclineRequest removes the logged-in user from the thread.
// The thread and the other participant are kept.
func (c *Cockroach) DeclineRequest(ctx context.Context, in types.AnswerRequest) (types.AnsweredRequest, error) {
	var out types.AnsweredRequest

	const q = `
		DELETE FROM participants
		WHERE thread_id = @thread_id AND user_id = @user_id
		RETURNING id
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"thread_id": in.ThreadID,
		"user_id":   in.LoggedInUserID(),
	})
	if err != nil {
		return out, fmt.Errorf("sql delete participant: %w", err)
	}

	deleted, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return out, fmt.Errorf("sql collect deleted participant: %w", err)
	}

	out.Answered = len(deleted) != 0

	return out, nil
}

func (c *Cockroach) touchThread(ctx context.Context, threadID string) error {
	const q = `
		UPDATE threads
		SET last_message_at = now()
		WHERE id = @thread_id
	`

	_, err := c.db.Exec(ctx, q, pgx.StrictNamedArgs{
		"thread_id": threadID,
	})
	if err != nil {
		return fmt.Errorf("sql update thread last message at: %w", err)
	}

	return nil
}
