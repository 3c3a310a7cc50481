package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/matryer/way"
	"github.com/nakamauwu/backchannel/types"
)

type sendMessageReqBody struct {
	Content     string             `json:"content"`
	Attachments []types.Attachment `json:"attachments"`
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var reqBody sendMessageReqBody
	if err := decodeJSON(r, &reqBody); err != nil {
		h.respondErr(w, err)
		return
	}

	ctx := r.Context()
	out, err := h.Service.SendMessage(ctx, types.SendMessage{
		ThreadID:    way.Param(ctx, "thread_id"),
		Content:     reqBody.Content,
		Attachments: reqBody.Attachments,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	// Nothing to send.
	if out.ID == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.Service.DeleteMessage(ctx, types.DeleteMessage{
		MessageID: way.Param(ctx, "message_id"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) uploadAttachments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErr(w, maxBytesErr)
			return
		}

		h.respondErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	uploads := make([]types.Upload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))

	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.respondErr(w, fmt.Errorf("open multipart file: %w", err))
			return
		}

		files = append(files, f)

		upload := types.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			FileSize:    uint64(fh.Size),
		}
		upload.SetReader(f)
		uploads = append(uploads, upload)
	}

	out, err := h.Service.UploadAttachments(r.Context(), uploads)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}
