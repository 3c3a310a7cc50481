package service

import (
	"context"

	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/types"
)

// Notifications lists the logged-in user notifications, newest first,
// and marks the unread ones among them as read.
// The returned items still carry their previous read state.
// On failure nothing is marked and the page comes back empty.
func (svc *Service) Notifications(ctx context.Context, in types.ListNotifications) (types.Page[types.Notification], error) {
	out := types.Page[types.Notification]{Items: []types.Notification{}}

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, nil
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	in.SetUserID(loggedInUser.ID)

	page, err := svc.Cockroach.ReadNotifications(ctx, in)
	if err != nil {
		return out, err
	}

	out = page
	if out.Items == nil {
		out.Items = []types.Notification{}
	}

	return out, nil
}

// MarkNotificationsAsRead with no IDs marks every notification.
func (svc *Service) MarkNotificationsAsRead(ctx context.Context, in types.MarkNotificationsAsRead) error {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return err
	}

	in.SetUserID(loggedInUser.ID)

	return svc.Cockroach.MarkNotificationsAsRead(ctx, in)
}

// UnreadNotificationsCount is zero for anonymous callers.
func (svc *Service) UnreadNotificationsCount(ctx context.Context) (int, error) {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return 0, nil
	}

	return svc.Cockroach.UnreadNotificationsCount(ctx, loggedInUser.ID)
}
