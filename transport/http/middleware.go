package http

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/types"
)

// withUser resolves the bearer token into the logged-in user.
// Requests without a known token continue as anonymous.
func (h *Handler) withUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" || h.Sessions == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		userID, err := h.Sessions.Resolve(ctx, token)
		if errs.IsUnauthenticated(err) {
			next.ServeHTTP(w, r)
			return
		}

		if err != nil {
			h.respondErr(w, fmt.Errorf("resolve session: %w", err))
			return
		}

		user, err := h.Service.User(ctx, types.RetrieveUser{UserID: userID})
		if errs.IsNotFound(err) {
			next.ServeHTTP(w, r)
			return
		}

		if err != nil {
			h.respondErr(w, fmt.Errorf("get session user: %w", err))
			return
		}

		ctx = auth.ContextWithUser(ctx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) withSyncToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.SyncToken == "" {
			h.respondErr(w, errRouteNotFound)
			return
		}

		got := r.Header.Get("X-Sync-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.SyncToken)) != 1 {
			h.respondErr(w, errInvalidSync)
			return
		}

		next(w, r)
	}
}
