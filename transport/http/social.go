package http

import (
	"net/http"

	"github.com/matryer/way"
	"github.com/nakamauwu/backchannel/types"
)

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var in types.CreatePost
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	out, err := h.Service.CreatePost(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) togglePostLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.Service.TogglePostLike(ctx, types.TogglePostLike{
		PostID: way.Param(ctx, "post_id"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

type createCommentReqBody struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentID"`
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	var reqBody createCommentReqBody
	if err := decodeJSON(r, &reqBody); err != nil {
		h.respondErr(w, err)
		return
	}

	ctx := r.Context()
	out, err := h.Service.CreateComment(ctx, types.CreateComment{
		PostID:   way.Param(ctx, "post_id"),
		ParentID: reqBody.ParentID,
		Content:  reqBody.Content,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

func (h *Handler) toggleCommentLike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.Service.ToggleCommentLike(ctx, types.ToggleCommentLike{
		CommentID: way.Param(ctx, "comment_id"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *Handler) toggleFollow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.Service.ToggleFollow(ctx, types.ToggleFollow{
		FolloweeID: way.Param(ctx, "user_id"),
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}
