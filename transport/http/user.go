package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matryer/way"
	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/types"
)

func (h *Handler) user(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.Service.User(ctx, types.RetrieveUser{
		UserID: way.Param(ctx, "user_id"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, user, http.StatusOK)
}

type createSessionReqBody struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      types.UpsertUser `json:"user"`
}

type createSessionRespBody struct {
	User      types.User `json:"user"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// createSession is called by the identity provider once it has
// authenticated someone. It upserts the user summary and binds the
// opaque token to them.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var reqBody createSessionReqBody
	if err := decodeJSON(r, &reqBody); err != nil {
		h.respondErr(w, err)
		return
	}

	reqBody.Token = strings.TrimSpace(reqBody.Token)
	if reqBody.Token == "" {
		h.respondErr(w, errs.NewInvalidArgumentError("Token", "Token is required"))
		return
	}

	if !reqBody.ExpiresAt.IsZero() && !reqBody.ExpiresAt.After(time.Now()) {
		h.respondErr(w, auth.ErrSessionExpired)
		return
	}

	ctx := r.Context()
	user, err := h.Service.SyncUser(ctx, reqBody.User)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if err := h.Sessions.Save(ctx, reqBody.Token, user.ID, reqBody.ExpiresAt); err != nil {
		h.respondErr(w, fmt.Errorf("save session: %w", err))
		return
	}

	h.respond(w, createSessionRespBody{
		User:      user,
		ExpiresAt: reqBody.ExpiresAt,
	}, http.StatusCreated)
}

type revokeSessionReqBody struct {
	Token string `json:"token"`
}

// revokeSession is called by the identity provider on sign out.
func (h *Handler) revokeSession(w http.ResponseWriter, r *http.Request) {
	var reqBody revokeSessionReqBody
	if err := decodeJSON(r, &reqBody); err != nil {
		h.respondErr(w, err)
		return
	}

	reqBody.Token = strings.TrimSpace(reqBody.Token)
	if reqBody.Token == "" {
		h.respondErr(w, errs.NewInvalidArgumentError("Token", "Token is required"))
		return
	}

	if err := h.Sessions.Revoke(r.Context(), reqBody.Token); err != nil {
		h.respondErr(w, fmt.Errorf("revoke session: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
