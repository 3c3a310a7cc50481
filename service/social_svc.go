package service

import (
	"context"

	"github.com/nakamauwu/backchannel/auth"
	"github.com/nakamauwu/backchannel/errs"
	"github.com/nakamauwu/backchannel/types"
)

func (svc *Service) CreatePost(ctx context.Context, in types.CreatePost) (types.Created, error) {
	var out types.Created

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	in.SetUserID(loggedInUser.ID)

	return svc.Cockroach.CreatePost(ctx, in)
}

func (svc *Service) TogglePostLike(ctx context.Context, in types.TogglePostLike) (types.ToggledLike, error) {
	var out types.ToggledLike

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	out, err := svc.Cockroach.TogglePostLike(ctx, in)
	if err != nil {
		return out, err
	}

	svc.publishNotification(out.Notification)

	return out, nil
}

// CreateComment creates a top level comment or, with a parent, a reply.
func (svc *Service) CreateComment(ctx context.Context, in types.CreateComment) (types.Created, error) {
	var out types.Created

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	in.SetUserID(loggedInUser.ID)

	created, err := svc.Cockroach.CreateComment(ctx, in)
	if err != nil {
		return out, err
	}

	svc.publishNotification(created.Notification)

	return created.Created, nil
}

func (svc *Service) ToggleCommentLike(ctx context.Context, in types.ToggleCommentLike) (types.ToggledLike, error) {
	var out types.ToggledLike

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	out, err := svc.Cockroach.ToggleCommentLike(ctx, in)
	if err != nil {
		return out, err
	}

	svc.publishNotification(out.Notification)

	return out, nil
}

func (svc *Service) ToggleFollow(ctx context.Context, in types.ToggleFollow) (types.ToggledFollow, error) {
	var out types.ToggledFollow

	loggedInUser, loggedIn := auth.UserFromContext(ctx)
	if !loggedIn {
		return out, errs.Unauthenticated
	}

	if err := in.Validate(); err != nil {
		return out, err
	}

	if in.FolloweeID == loggedInUser.ID {
		return out, errs.NewInvalidOperationError("cannot follow yourself")
	}

	in.SetLoggedInUserID(loggedInUser.ID)

	out, err := svc.Cockroach.ToggleFollow(ctx, in)
	if err != nil {
		return out, err
	}

	svc.publishNotification(out.Notification)

	return out, nil
}
