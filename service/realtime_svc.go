package service

import (
	"context"

	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/types"
)

// RealtimeEvents streams the inbox and notification events
// of the logged-in user until ctx is done.
func (svc *Service) RealtimeEvents(ctx context.Context) (<-chan types.RealtimeEvent, error) {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return nil, errs.Unauthenticated
	}

	if svc.Events == nil {
		return nil, errs.NewInvalidOperationError("realtime events are not available")
	}

	return svc.Events.Subscribe(ctx, loggedInUser.ID)
}
