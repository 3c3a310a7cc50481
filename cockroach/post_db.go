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

func (c *Cockroach) CreatePost(ctx context.Context, in types.CreatePost) (types.Created, error) {
	var out types.Created

	const q = `
		INSERT INTO posts (id, user_id, content)
		VALUES (@post_id, @user_id, @content)
		RETURNING id, created_at
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"post_id": id.Generate(),
		"user_id": in.UserID(),
		"content": in.Content,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert post: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Created])
	if err != nil {
		return out, fmt.Errorf("sql collect inserted post: %w", err)
	}

	return out, nil
}

func (c *Cockroach) postAuthorID(ctx context.Context, postID string) (string, error) {
	const q = `SELECT user_id FROM posts WHERE id = @post_id`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"post_id": postID,
	})
	if err != nil {
		return "", fmt.Errorf("sql select post author: %w", err)
	}

	out, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[string])
	if db.IsNotFoundError(err) {
		return "", errs.NewNotFoundError("post not found")
	}

	if err != nil {
		return "", fmt.Errorf("sql collect post author: %w", err)
	}

	return out, nil
}

// TogglePostLike likes or unlikes a post.
// Unliking never notifies nor retracts a previous notification.
func (c *Cockroach) TogglePostLike(ctx context.Context, in types.TogglePostLike) (types.ToggledLike, error) {
	var out types.ToggledLike
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		authorID, err := c.postAuthorID(ctx, in.PostID)
		if err != nil {
			return err
		}

		args := pgx.StrictNamedArgs{
			"user_id": in.LoggedInUserID(),
			"post_id": in.PostID,
		}

		var exists bool
		err = c.db.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM post_likes
				WHERE user_id = @user_id AND post_id = @post_id
			)
		`, args).Scan(&exists)
		if err != nil {
			return fmt.Errorf("sql check post like exists: %w", err)
		}

		diff := -1
		if exists {
			_, err = c.db.Exec(ctx, `
				DELETE FROM post_likes
				WHERE user_id = @user_id AND post_id = @post_id
			`, args)
			if err != nil {
				return fmt.Errorf("sql delete post like: %w", err)
			}
		} else {
			_, err = c.db.Exec(ctx, `
				INSERT INTO post_likes (user_id, post_id)
				VALUES (@user_id, @post_id)
			`, args)
			if err != nil {
				return fmt.Errorf("sql insert post like: %w", err)
			}

			diff = 1
			out.Liked = true
			out.Notification, err = c.fanout(ctx, types.PostLiked{
				ActorID:      in.LoggedInUserID(),
				PostID:       in.PostID,
				PostAuthorID: authorID,
			})
			if err != nil {
				return err
			}
		}

		err = c.db.QueryRow(ctx, `
			UPDATE posts SET likes_count = likes_count + @diff
			WHERE id = @post_id
			RETURNING likes_count
		`, pgx.StrictNamedArgs{
			"post_id": in.PostID,
			"diff":    diff,
		}).Scan(&out.LikesCount)
		if err != nil {
			return fmt.Errorf("sql update post likes count: %w", err)
		}

		return nil
	})
}
