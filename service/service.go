package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nakamauwu/backchannel/cockroach"
	"github.com/nakamauwu/backchannel/types"
	"github.com/prometheus/client_golang/prometheus"
)

// EventBus carries fire-and-forget events to realtime subscribers.
type EventBus interface {
	PublishInboxEvent(userID string, ev types.InboxEvent) error
	PublishNotification(notification types.Notification) error
	Subscribe(ctx context.Context, userID string) (<-chan types.RealtimeEvent, error)
}

// ObjectStore keeps uploaded attachments.
type ObjectStore interface {
	UploadMany(ctx context.Context, bucket string, files []types.Upload) (func(), error)
	ObjectURL(bucket, path string) string
}

type Config struct {
	Cockroach         *cockroach.Cockroach
	ObjectStore       ObjectStore
	Events            EventBus
	Registerer        prometheus.Registerer
	AttachmentsBucket string
	MaxUploadFiles    int
	MaxUploadSize     uint64
	BaseCtx           context.Context
	BackgroundTimeout time.Duration
}

type Service struct {
	Cockroach   *cockroach.Cockroach
	ObjectStore ObjectStore
	Events      EventBus

	attachmentsBucket string
	maxUploadFiles    int
	maxUploadSize     uint64
	metrics           *metrics
	baseCtx           context.Context
	backgroundTimeout time.Duration
	wg                sync.WaitGroup
	errs              chan error
}

func New(cfg *Config) *Service {
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	baseCtx := cfg.BaseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	backgroundTimeout := cfg.BackgroundTimeout
	if backgroundTimeout <= 0 {
		backgroundTimeout = 30 * time.Second
	}

	maxUploadFiles := cfg.MaxUploadFiles
	if maxUploadFiles <= 0 {
		maxUploadFiles = defaultMaxUploadFiles
	}

	maxUploadSize := cfg.MaxUploadSize
	if maxUploadSize == 0 {
		maxUploadSize = defaultMaxUploadSize
	}

	return &Service{
		Cockroach:   cfg.Cockroach,
		ObjectStore: cfg.ObjectStore,
		Events:      cfg.Events,

		attachmentsBucket: cfg.AttachmentsBucket,
		maxUploadFiles:    maxUploadFiles,
		maxUploadSize:     maxUploadSize,
		metrics:           newMetrics(reg),
		baseCtx:           baseCtx,
		backgroundTimeout: backgroundTimeout,
		errs:              make(chan error, 1),
	}
}

func (svc *Service) Errs() <-chan error {
	return svc.errs
}

// Close waits for background work to finish.
func (svc *Service) Close() error {
	svc.wg.Wait()
	close(svc.errs)
	return nil
}

func (svc *Service) background(fn func(ctx context.Context) error) {
	svc.wg.Go(func() {
		defer func() {
			if rcv := recover(); rcv != nil {
				select {
				case svc.errs <- fmt.Errorf("service background panic: %v", rcv):
				default:
				}
			}
		}()

		ctx, cancel := context.WithTimeout(svc.baseCtx, svc.backgroundTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			select {
			case svc.errs <- fmt.Errorf("service background error: %w", err):
			default:
			}
		}
	})
}
