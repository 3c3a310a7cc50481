package service

import (
	"context"

	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/types"
)

// SendMessage sends text, attachments or both.
// With nothing to send it does nothing and returns a zero value.
func (svc *Service) SendMessage(ctx context.Context, in types.SendMessage) (types.Created, error) {
	var out types.Created

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	if in.Empty() {
		return out, nil
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	out, err := svc.Cockroach.SendMessage(ctx, in)
	if err != nil {
		return out, err
	}

	svc.metrics.messagesSent.Inc()
	svc.publishThreadInbox(types.InboxEventMessageSent, in.ThreadID, loggedInUser.ID)

	return out, nil
}

// DeleteMessage deletes a message sent by the logged-in user.
// Deleting a message that no longer exists succeeds.
func (svc *Service) DeleteMessage(ctx context.Context, in types.DeleteMessage) error {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return err
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	deleted, err := svc.Cockroach.DeleteMessage(ctx, in)
	if err != nil {
		return err
	}

	if deleted.Deleted {
		svc.publishThreadInbox(types.InboxEventMessageDeleted, deleted.ThreadID, loggedInUser.ID)
	}

	return nil
}
