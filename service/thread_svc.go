package service

import (
	"context"

	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/types"
)

// StartThread returns the thread between the logged-in user and the
// other user, creating it when needed, and sends the optional first message.
func (svc *Service) StartThread(ctx context.Context, in types.StartThread) (types.Created, error) {
	var out types.Created

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	if in.OtherUserID == loggedInUser.ID {
		return out, errs.NewInvalidOperationError("cannot start a thread with yourself")
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	out, err := svc.Cockroach.StartThread(ctx, in)
	if err != nil {
		return out, err
	}

	svc.metrics.threadsStarted.Inc()
	if in.Content != "" {
		svc.metrics.messagesSent.Inc()
	}

	svc.publishInbox(types.InboxEventThreadStarted, out.ID, loggedInUser.ID, loggedInUser.ID, in.OtherUserID)

	return out, nil
}

// Inbox lists the threads the logged-in user accepted.
// Anonymous callers get an empty list.
func (svc *Service) Inbox(ctx context.Context) ([]types.Thread, error) {
	return svc.threads(ctx, types.ParticipantStatusAccepted)
}

// Requests lists the threads pending the logged-in user acceptance.
// Anonymous callers get an empty list.
func (svc *Service) Requests(ctx context.Context) ([]types.Thread, error) {
	return svc.threads(ctx, types.ParticipantStatusPending)
}

func (svc *Service) threads(ctx context.Context, status types.ParticipantStatus) ([]types.Thread, error) {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return []types.Thread{}, nil
	}

	in := types.ListThreads{Status: status}
	in.SetLoggedInUserID(loggedInUser.ID)

	out, err := svc.Cockroach.Threads(ctx, in)
	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []types.Thread{}
	}

	return out, nil
}

// Thread retrieves a thread the logged-in user participates in
// and marks it as read by them.
func (svc *Service) Thread(ctx context.Context, in types.RetrieveThread) (types.Thread, error) {
	var out types.Thread

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.NewNotFoundError("thread not found")
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	return svc.Cockroach.Thread(ctx, in)
}

func (svc *Service) AcceptRequest(ctx context.Context, in types.AnswerRequest) error {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return err
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	answered, err := svc.Cockroach.AcceptRequest(ctx, in)
	if err != nil {
		return err
	}

	if answered.Answered {
		svc.publishThreadInbox(types.InboxEventRequestAccepted, in.ThreadID, loggedInUser.ID)
	}

	return nil
}

// DeclineRequest removes the logged-in user from the thread.
// The other participant keeps the thread.
func (svc *Service) DeclineRequest(ctx context.Context, in types.AnswerRequest) error {
	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return err
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	answered, err := svc.Cockroach.DeclineRequest(ctx, in)
	if err != nil {
		return err
	}

	if answered.Answered {
		svc.publishThreadInbox(types.InboxEventRequestDeclined, in.ThreadID, loggedInUser.ID, loggedInUser.ID)
	}

	return nil
}
