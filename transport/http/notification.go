package http

import (
	"net/http"

	"github.com/nakamauwu/backchannel/types"
)

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	pageArgs, err := parsePageArgs(r.URL.Query())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	page, err := h.Service.Notifications(r.Context(), types.ListNotifications{
		PageArgs: pageArgs,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, page, http.StatusOK)
}

type markNotificationsReqBody struct {
	NotificationIDs []string `json:"notificationIDs"`
}

func (h *Handler) markNotificationsAsRead(w http.ResponseWriter, r *http.Request) {
	var reqBody markNotificationsReqBody
	// An empty body marks all of them.
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &reqBody); err != nil {
			h.respondErr(w, err)
			return
		}
	}

	err := h.Service.MarkNotificationsAsRead(r.Context(), types.MarkNotificationsAsRead{
		NotificationIDs: reqBody.NotificationIDs,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unreadNotificationsCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.UnreadNotificationsCount(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, struct {
		Count int `json:"count"`
	}{Count: count}, http.StatusOK)
}
