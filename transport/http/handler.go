package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	"github.com/nakamauwu/backchannel/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sessions resolves bearer tokens to user IDs, stores new ones
// and revokes them.
type Sessions interface {
	Resolve(ctx context.Context, token string) (string, error)
	Save(ctx context.Context, token, userID string, expiresAt time.Time) error
	Revoke(ctx context.Context, token string) error
}

type Handler struct {
	Service     *service.Service
	Sessions    Sessions
	ErrorLogger *slog.Logger
	// SyncToken guards the internal identity endpoints.
	// They are disabled when empty.
	SyncToken string
	// MaxUploadBytes caps the whole multipart body of an upload.
	MaxUploadBytes int64
	Registerer     prometheus.Registerer
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string

	upgrader websocket.Upgrader
	duration *prometheus.HistogramVec
	handler  http.Handler
	once     sync.Once
}

func (h *Handler) init() {
	if h.ErrorLogger == nil {
		h.ErrorLogger = slog.Default()
	}

	if h.MaxUploadBytes <= 0 {
		h.MaxUploadBytes = defaultMaxUploadBytes
	}

	reg := h.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	h.duration = promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backchannel_http_request_duration_seconds",
		Help:    "Duration of HTTP requests by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "code"})

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(h.AllowedOrigins),
	}

	r := way.NewRouter()

	h.route(r, http.MethodPost, "/api/threads", h.startThread)
	h.route(r, http.MethodGet, "/api/inbox", h.inbox)
	h.route(r, http.MethodGet, "/api/requests", h.requests)
	h.route(r, http.MethodGet, "/api/threads/:thread_id", h.thread)
	h.route(r, http.MethodPost, "/api/threads/:thread_id/accept", h.acceptRequest)
	h.route(r, http.MethodPost, "/api/threads/:thread_id/decline", h.declineRequest)
	h.route(r, http.MethodPost, "/api/threads/:thread_id/messages", h.sendMessage)
	h.route(r, http.MethodDelete, "/api/messages/:message_id", h.deleteMessage)
	h.route(r, http.MethodPost, "/api/uploads", h.uploadAttachments)
	h.route(r, http.MethodPost, "/api/posts", h.createPost)
	h.route(r, http.MethodPost, "/api/posts/:post_id/toggle_like", h.togglePostLike)
	h.route(r, http.MethodPost, "/api/posts/:post_id/comments", h.createComment)
	h.route(r, http.MethodPost, "/api/comments/:comment_id/toggle_like", h.toggleCommentLike)
	h.route(r, http.MethodPost, "/api/users/:user_id/toggle_follow", h.toggleFollow)
	h.route(r, http.MethodGet, "/api/notifications", h.notifications)
	h.route(r, http.MethodPost, "/api/notifications/read", h.markNotificationsAsRead)
	h.route(r, http.MethodGet, "/api/notifications/unread_count", h.unreadNotificationsCount)
	h.route(r, http.MethodGet, "/api/realtime", h.realtime)
	h.route(r, http.MethodPost, "/api/internal/sessions", h.withSyncToken(h.createSession))
	h.route(r, http.MethodDelete, "/api/internal/sessions", h.withSyncToken(h.revokeSession))
	h.route(r, http.MethodGet, "/api/users/:user_id", h.user)

	if h.Gatherer != nil {
		r.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{}))
	}

	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.respondErr(w, errRouteNotFound)
	})

	h.handler = r
	h.handler = h.withUser(h.handler)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.once.Do(h.init)
	h.handler.ServeHTTP(w, r)
}

// route registers fn under pattern and records its duration
// labeled by the pattern instead of the raw path.
func (h *Handler) route(r *way.Router, method, pattern string, fn http.HandlerFunc) {
	obs := h.duration.MustCurryWith(prometheus.Labels{"route": pattern})
	r.Handle(method, pattern, promhttp.InstrumentHandlerDuration(obs, fn))
}
