package http

import (
	"net/http"

	"github.com/matryer/way"
	"github.com/nakamauwu/backchannel/types"
)

type startThreadReqBody struct {
	UserID  string `json:"userID"`
	Content string `json:"content"`
}

func (h *Handler) startThread(w http.ResponseWriter, r *http.Request) {
	var reqBody startThreadReqBody
	if err := decodeJSON(r, &reqBody); err != nil {
		h.respondErr(w, err)
		return
	}

	out, err := h.Service.StartThread(r.Context(), types.StartThread{
		OtherUserID: reqBody.UserID,
		Content:     reqBody.Content,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) inbox(w http.ResponseWriter, r *http.Request) {
	threads, err := h.Service.Inbox(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respondThreads(w, threads)
}

func (h *Handler) requests(w http.ResponseWriter, r *http.Request) {
	threads, err := h.Service.Requests(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respondThreads(w, threads)
}

func (h *Handler) respondThreads(w http.ResponseWriter, threads []types.Thread) {
	if threads == nil {
		threads = []types.Thread{} // non null array
	}

	h.respond(w, threads, http.StatusOK)
}

func (h *Handler) thread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	thread, err := h.Service.Thread(ctx, types.RetrieveThread{
		ThreadID: way.Param(ctx, "thread_id"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	if thread.Messages == nil {
		thread.Messages = []types.Message{} // non null array
	}

	for i := range thread.Messages {
		if thread.Messages[i].Attachments == nil {
			thread.Messages[i].Attachments = []types.Attachment{} // non null array
		}
	}

	h.respond(w, threadRespBody{
		Thread:   thread,
		Orphaned: thread.Orphaned(),
	}, http.StatusOK)
}

// threadRespBody flags threads left with a single participant
// so clients can tell the other side declined.
type threadRespBody struct {
	types.Thread
	Orphaned bool `json:"orphaned"`
}

func (h *Handler) acceptRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.Service.AcceptRequest(ctx, types.AnswerRequest{
		ThreadID: way.Param(ctx, "thread_id"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) declineRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.Service.DeclineRequest(ctx, types.AnswerRequest{
		ThreadID: way.Param(ctx, "thread_id"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
