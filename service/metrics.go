package service

import (
	"github.com/nakamauwu/backchannel/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	notificationsCreated *prometheus.CounterVec
	messagesSent         prometheus.Counter
	threadsStarted       prometheus.Counter
	eventsPublished      *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		notificationsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backchannel",
			Name:      "notifications_created_total",
			Help:      "Notifications created by social actions.",
		}, []string{"kind"}),
		messagesSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: "backchannel",
			Name:      "messages_sent_total",
			Help:      "Direct messages sent.",
		}),
		threadsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "backchannel",
			Name:      "threads_started_total",
			Help:      "Calls to start a thread, whether new or reused.",
		}),
		eventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backchannel",
			Name:      "events_published_total",
			Help:      "Realtime events published, by result.",
		}, []string{"result"}),
	}
}

func (m *metrics) notificationCreated(n *types.Notification) {
	if n == nil {
		return
	}
	m.notificationsCreated.WithLabelValues(n.Kind.String()).Inc()
}
