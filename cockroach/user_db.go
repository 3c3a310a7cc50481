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

const sqlUserCols = `users.id, users.name, users.username, users.image`

// UpsertUser syncs the user summary keyed by its external identifier.
func (c *Cockroach) UpsertUser(ctx context.Context, in types.UpsertUser) (types.User, error) {
	var out types.User

	q := `
		INSERT INTO users (id, external_id, name, username, image)
		VALUES (@user_id, @external_id, @name, @username, @image)
		ON CONFLICT (external_id) DO UPDATE
		SET name = EXCLUDED.name
		  , username = EXCLUDED.username
		  , image = EXCLUDED.image
		  , updated_at = now()
		RETURNING ` + sqlUserCols

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"user_id":     id.Generate(),
		"external_id": in.ExternalID,
		"name":        in.Name,
		"username":    in.Username,
		"image":       in.Image,
	})
	if err != nil {
		return out, fmt.Errorf("sql upsert user: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.User])
	if db.IsUniqueViolationError(err, "username") {
		return out, errs.NewAlreadyExistsError("Username", "username taken")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect upserted user: %w", err)
	}

	return out, nil
}

func (c *Cockroach) User(ctx context.Context, userID string) (types.User, error) {
	var out types.User

	q := `SELECT ` + sqlUserCols + ` FROM users WHERE users.id = @user_id`

	rows, err := c.db.Query(ctx, q, pgx.StrictNamedArgs{
		"user_id": userID,
	})
	if err != nil {
		return out, fmt.Errorf("sql select user: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.User])
	if db.IsNotFoundError(err) {
		return out, errs.NewNotFoundError("user not found")
	}

	if err != nil {
		return out, fmt.Errorf("sql collect user: %w", err)
	}

	return out, nil
}

// ToggleFollow follows or unfollows. Only the follow branch notifies.
func (c *Cockroach) ToggleFollow(ctx context.Context, in types.ToggleFollow) (types.ToggledFollow, error) {
	var out types.ToggledFollow
	return out, c.db.RunTx(ctx, func(ctx context.Context) error {
		if _, err := c.User(ctx, in.FolloweeID); err != nil {
			return err
		}

		exists, err := c.followExists(ctx, in.LoggedInUserID(), in.FolloweeID)
		if err != nil {
			return err
		}

		if exists {
			if err := c.deleteFollow(ctx, in.LoggedInUserID(), in.FolloweeID); err != nil {
				return err
			}
		} else {
			if err := c.insertFollow(ctx, in.LoggedInUserID(), in.FolloweeID); err != nil {
				return err
			}

			out.Following = true
			out.Notification, err = c.fanout(ctx, types.UserFollowed{
				ActorID:    in.LoggedInUserID(),
				FolloweeID: in.FolloweeID,
			})
			if err != nil {
				return err
			}
		}

		out.FollowersCount, err = c.updateFollowCounts(ctx, in.LoggedInUserID(), in.FolloweeID, out.Following)
		return err
	})
}

func (c *Cockroach) followExists(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool
	err := c.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows
			WHERE follower_id = @follower_id AND followee_id = @followee_id
		)
	`, pgx.StrictNamedArgs{
		"follower_id": followerID,
		"followee_id": followeeID,
	}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sql check follow exists: %w", err)
	}
	return exists, nil
}

func (c *Cockroach) insertFollow(ctx context.Context, followerID, followeeID string) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES (@follower_id, @followee_id)
	`, pgx.StrictNamedArgs{
		"follower_id": followerID,
		"followee_id": followeeID,
	})
	if err != nil {
		return fmt.Errorf("sql insert follow: %w", err)
	}
	return nil
}

func (c *Cockroach) deleteFollow(ctx context.Context, followerID, followeeID string) error {
	_, err := c.db.Exec(ctx, `
		DELETE FROM follows
		WHERE follower_id = @follower_id AND followee_id = @followee_id
	`, pgx.StrictNamedArgs{
		"follower_id": followerID,
		"followee_id": followeeID,
	})
	if err != nil {
		return fmt.Errorf("sql delete follow: %w", err)
	}
	return nil
}

func (c *Cockroach) updateFollowCounts(ctx context.Context, followerID, followeeID string, followed bool) (int, error) {
	diff := -1
	if followed {
		diff = 1
	}

	_, err := c.db.Exec(ctx, `
		UPDATE users SET following_count = following_count + @diff
		WHERE id = @follower_id
	`, pgx.StrictNamedArgs{
		"follower_id": followerID,
		"diff":        diff,
	})
	if err != nil {
		return 0, fmt.Errorf("sql update following count: %w", err)
	}

	var followersCount int
	err = c.db.QueryRow(ctx, `
		UPDATE users SET followers_count = followers_count + @diff
		WHERE id = @followee_id
		RETURNING followers_count
	`, pgx.StrictNamedArgs{
		"followee_id": followeeID,
		"diff":        diff,
	}).Scan(&followersCount)
	if err != nil {
		return 0, fmt.Errorf("sql update followers count: %w", err)
	}

	return followersCount, nil
}
