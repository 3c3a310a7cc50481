package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nakamauwu/backchannel/errs"
)

func setupSessions(t *testing.T) (*RedisSessions, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	sessions, err := DialRedisSessions(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("could not dial redis: %v", err)
	}

	t.Cleanup(func() {
		_ = sessions.Close()
	})

	return sessions, mr
}

func TestRedisSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("save_and_resolve", func(t *testing.T) {
		sessions, _ := setupSessions(t)

		if err := sessions.Save(ctx, "token-1", "user-1", time.Now().Add(time.Hour)); err != nil {
			t.Fatal(err)
		}

		got, err := sessions.Resolve(ctx, "token-1")
		if err != nil {
			t.Fatal(err)
		}

		if got != "user-1" {
			t.Errorf("got user %q, want %q", got, "user-1")
		}
	})

	t.Run("token_is_hashed", func(t *testing.T) {
		sessions, mr := setupSessions(t)

		if err := sessions.Save(ctx, "plain-token", "user-1", time.Time{}); err != nil {
			t.Fatal(err)
		}

		for _, key := range mr.Keys() {
			if strings.Contains(key, "plain-token") {
				t.Errorf("raw token stored in key %q", key)
			}
		}

		if ttl := mr.TTL(sessionKey("plain-token")); ttl != defaultSessionTTL {
			t.Errorf("ttl = %v, want %v", ttl, defaultSessionTTL)
		}
	})

	t.Run("expired", func(t *testing.T) {
		sessions, mr := setupSessions(t)

		if err := sessions.Save(ctx, "token-1", "user-1", time.Now().Add(time.Minute)); err != nil {
			t.Fatal(err)
		}

		mr.FastForward(2 * time.Minute)

		_, err := sessions.Resolve(ctx, "token-1")
		if !errs.IsUnauthenticated(err) {
			t.Errorf("got %v, want unauthenticated", err)
		}
	})

	t.Run("already_expired", func(t *testing.T) {
		sessions, mr := setupSessions(t)

		if err := sessions.Save(ctx, "token-1", "user-1", time.Now().Add(time.Hour)); err != nil {
			t.Fatal(err)
		}

		err := sessions.Save(ctx, "token-1", "user-1", time.Now().Add(-time.Hour))
		if !errors.Is(err, ErrSessionExpired) || !errs.IsInvalidArgument(err) {
			t.Fatalf("got %v, want %v", err, ErrSessionExpired)
		}

		if mr.Exists(sessionKey("token-1")) {
			t.Error("expired token left a session behind")
		}

		if uid, err := sessions.Resolve(ctx, "token-1"); !errs.IsUnauthenticated(err) {
			t.Errorf("token that expired an hour ago resolved to %q, %v", uid, err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		sessions, _ := setupSessions(t)

		_, err := sessions.Resolve(ctx, "nope")
		if !errs.IsUnauthenticated(err) {
			t.Errorf("got %v, want unauthenticated", err)
		}
	})

	t.Run("revoke", func(t *testing.T) {
		sessions, _ := setupSessions(t)

		if err := sessions.Save(ctx, "token-1", "user-1", time.Now().Add(time.Hour)); err != nil {
			t.Fatal(err)
		}

		if err := sessions.Revoke(ctx, "token-1"); err != nil {
			t.Fatal(err)
		}

		if _, err := sessions.Resolve(ctx, "token-1"); !errs.IsUnauthenticated(err) {
			t.Errorf("got %v, want unauthenticated", err)
		}

		if err := sessions.Revoke(ctx, "never-saved"); err != nil {
			t.Errorf("revoking unknown token should not fail: %v", err)
		}
	})
}
