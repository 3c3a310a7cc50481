package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"

	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/ptr"
	"github.com/nakamauwu/backchannel/types"
	"github.com/nakamauwu/backchannel/validator"
)

const defaultMaxUploadBytes = 10*(25<<20) + 1<<20

var (
	errBadRequest    = errors.New("bad request")
	errRouteNotFound = errs.NewNotFoundError("route not found")
	errInvalidSync   = errs.NewPermissionDeniedError("invalid sync token")
)

func (h *Handler) respond(w http.ResponseWriter, v any, statusCode int) {
	b, err := json.Marshal(v)
	if err != nil {
		h.respondErr(w, fmt.Errorf("could not json marshal http response body: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, err = w.Write(b)
	if err != nil && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, context.Canceled) {
		h.ErrorLogger.Error("could not write down http response", "error", err)
	}
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	statusCode := err2code(err)
	if statusCode == http.StatusInternalServerError {
		if !errors.Is(err, context.Canceled) {
			h.ErrorLogger.Error("http handler", "error", err)
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Error(w, err.Error(), statusCode)
}

func err2code(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var v *validator.Validator
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &v):
		return http.StatusUnprocessableEntity
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	}

	return errs.HTTPStatus(err)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func bearerToken(r *http.Request) string {
	if a := strings.TrimSpace(r.Header.Get("Authorization")); len(a) > len("bearer ") && strings.EqualFold(a[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(a[len("bearer "):])
	}

	// Browsers cannot set headers on websocket handshakes.
	if r.URL.Path == "/api/realtime" {
		return r.URL.Query().Get("access_token")
	}

	return ""
}

func parsePageArgs(q url.Values) (types.PageArgs, error) {
	var pageArgs types.PageArgs

	if q.Has("first") {
		first, err := strconv.ParseUint(q.Get("first"), 10, 64)
		if err != nil {
			return pageArgs, errs.NewInvalidArgumentError("First", "invalid first page arg")
		}

		pageArgs.First = ptr.From(uint(first))
	}

	if q.Has("after") {
		pageArgs.After = ptr.From(q.Get("after"))
	}

	if q.Has("last") {
		last, err := strconv.ParseUint(q.Get("last"), 10, 64)
		if err != nil {
			return pageArgs, errs.NewInvalidArgumentError("Last", "invalid last page arg")
		}

		pageArgs.Last = ptr.From(uint(last))
	}

	if q.Has("before") {
		pageArgs.Before = ptr.From(q.Get("before"))
	}

	return pageArgs, nil
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
			set[o] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		_, ok := set[strings.ToLower(r.Header.Get("Origin"))]
		return ok
	}
}
