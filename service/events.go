package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nakamauwu/backchannel/types"
)

// publishInbox tells every user that their inbox view changed.
// It never blocks the caller.
func (svc *Service) publishInbox(kind types.InboxEventKind, threadID, actorID string, userIDs ...string) {
	if svc.Events == nil || len(userIDs) == 0 {
		return
	}

	ev := types.InboxEvent{
		Kind:     kind,
		ThreadID: threadID,
		ActorID:  actorID,
		At:       time.Now(),
	}

	svc.background(func(ctx context.Context) error {
		var errList []error
		for _, userID := range dedupe(userIDs) {
			errList = append(errList, svc.publish(func() error {
				return svc.Events.PublishInboxEvent(userID, ev)
			}))
		}
		return errors.Join(errList...)
	})
}

// publishThreadInbox is like publishInbox but addressed to whoever
// currently participates in the thread, plus extra users.
func (svc *Service) publishThreadInbox(kind types.InboxEventKind, threadID, actorID string, extra ...string) {
	if svc.Events == nil {
		return
	}

	svc.background(func(ctx context.Context) error {
		userIDs, err := svc.Cockroach.ThreadUserIDs(ctx, threadID)
		if err != nil {
			return fmt.Errorf("thread user ids for %s event: %w", kind, err)
		}

		svc.publishInbox(kind, threadID, actorID, append(userIDs, extra...)...)
		return nil
	})
}

func (svc *Service) publishNotification(n *types.Notification) {
	if n == nil {
		return
	}

	svc.metrics.notificationCreated(n)

	if svc.Events == nil {
		return
	}

	notification := *n
	svc.background(func(ctx context.Context) error {
		return svc.publish(func() error {
			return svc.Events.PublishNotification(notification)
		})
	})
}

func (svc *Service) publish(fn func() error) error {
	if err := fn(); err != nil {
		svc.metrics.eventsPublished.WithLabelValues("error").Inc()
		return err
	}

	svc.metrics.eventsPublished.WithLabelValues("ok").Inc()
	return nil
}

func dedupe(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
