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

// CreateComment creates a comment or a reply and notifies
// either the post author or the parent comment author.
func (c *Cockroach) CreateComment(ctx context.Context, in types.CreateComment) (types.CreatedComment, error) {
	var out types.CreatedComment
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		postAuthorID, err := c.postAuthorID(ctx, in.PostID)
		if err != nil {
			return err
		}

		var parent *types.CommentAuthor
		if in.IsReply() {
			parentComment, err := c.comment(ctx, *in.ParentID)
			if err != nil {
				return err
			}

			if parentComment.PostID != in.PostID {
				return errs.NewNotFoundError("parent comment not found")
			}

			parent = &types.CommentAuthor{
				CommentID: parentComment.ID,
				AuthorID:  parentComment.UserID,
			}
		}

		out.Created, err = c.insertComment(ctx, in)
		if err != nil {
			return err
		}

		out.Notification, err = c.fanout(ctx, types.CommentCreated{
			ActorID:      in.UserID(),
			PostID:       in.PostID,
			PostAuthorID: postAuthorID,
			CommentID:    out.ID,
			Parent:       parent,
		})
		return err
	})
}

func (c *Cockroach) insertComment(ctx context.Context, in types.CreateComment) (types.Created, error) {
	var out types.Created

	const q = `
		INSERT INTO comments (id, user_id, post_id, parent_id, content)
		VALUES (@comment_id, @user_id, @post_id, @parent_id, @content)
		RETURNING id, created_at
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"comment_id": id.Generate(),
		"user_id":    in.UserID(),
		"post_id":    in.PostID,
		"parent_id":  in.ParentID,
		"content":    in.Content,
	})
	if err != nil {
		return out, fmt.Errorf("sql insert comment: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Created])
	if db.IsForeignKeyViolationError(err, "post_id") {
		return out, errs.NewNotFoundError("post not found")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect inserted comment: %w", err)
	}

	_, err = c.db.Exec(ctx, `
		UPDATE posts SET comments_count = comments_count + 1
		WHERE id = @post_id
	`, pgx.StrictNamedArgs{
		"post_id": in.PostID,
	})
	if err != nil {
		return out, fmt.Errorf("sql update post comments count: %w", err)
	}

	return out, nil
}

func (c *Cockroach) comment(ctx context.Context, commentID string) (types.Comment, error) {
	var out types.Comment

	const q = `
		SELECT id, user_id, post_id, parent_id, content, created_at
		FROM comments
		WHERE id = @comment_id
	`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"comment_id": commentID,
	})
	if err != nil {
		return out, fmt.Errorf("sql select comment: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Comment])
	if db.IsNotFoundError(err) {
		return out, errs.NewNotFoundError("comment not found")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect comment: %w", err)
	}

	return out, nil
}

// ToggleCommentLike likes or unlikes a comment.
// Only the like branch notifies the comment author.
func (c *Cockroach) ToggleCommentLike(ctx context.Context, in types.ToggleCommentLike) (types.ToggledLike, error) {
	var out types.ToggledLike
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		comment, err := c.comment(ctx, in.CommentID)
		if err != nil {
			return err
		}

		exists, err := c.commentLikeExists(ctx, in)
		if err != nil {
			return err
		}

		diff := -1
		if exists {
			if err := c.deleteCommentLike(ctx, in); err != nil {
				return err
			}
		} else {
			if err := c.insertCommentLike(ctx, in); err != nil {
				return err
			}

			diff = 1
			out.Liked = true
			out.Notification, err = c.fanout(ctx, types.CommentLiked{
				ActorID:         in.LoggedInUserID(),
				PostID:          comment.PostID,
				CommentID:       comment.ID,
				CommentAuthorID: comment.UserID,
			})
			if err != nil {
				return err
			}
		}

		err = c.db.QueryRow(ctx, `
			UPDATE comments SET likes_count = likes_count + @diff
			WHERE id = @comment_id
			RETURNING likes_count
		`, pgx.StrictNamedArgs{
			"comment_id": in.CommentID,
			"diff":       diff,
		}).Scan(&out.LikesCount)
		if err != nil {
			return fmt.Errorf("sql update comment likes count: %w", err)
		}

		return nil
	})
}

func (c *Cockroach) commentLikeExists(ctx context.Context, in types.ToggleCommentLike) (bool, error) {
	var exists bool
	err := c.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM comment_likes
			WHERE user_id = @user_id AND comment_id = @comment_id
		)
	`, pgx.StrictNamedArgs{
		"user_id":    in.LoggedInUserID(),
		"comment_id": in.CommentID,
	}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sql check comment like exists: %w", err)
	}
	return exists, nil
}

func (c *Cockroach) insertCommentLike(ctx context.Context, in types.ToggleCommentLike) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO comment_likes (user_id, comment_id)
		VALUES (@user_id, @comment_id)
	`, pgx.StrictNamedArgs{
		"user_id":    in.LoggedInUserID(),
		"comment_id": in.CommentID,
	})
	if err != nil {
		return fmt.Errorf("sql insert comment like: %w", err)
	}
	return nil
}

func (c *Cockroach) deleteCommentLike(ctx context.Context, in types.ToggleCommentLike) error {
	_, err := c.db.Exec(ctx, `
		DELETE FROM comment_likes
		WHERE user_id = @user_id AND comment_id = @comment_id
	`, pgx.StrictNamedArgs{
		"user_id":    in.LoggedInUserID(),
		"comment_id": in.CommentID,
	})
	if err != nil {
		return fmt.Errorf("sql delete comment like: %w", err)
	}
	return nil
}
