package service

import (
	"context"

	"github.com/nakamauwu/backchannel/types"
)

// SyncUser upserts the summary of a user known by the identity provider.
func (svc *Service) SyncUser(ctx context.Context, in types.UpsertUser) (types.User, error) {
	var out types.User

	if err := in.Validate(); err != nil {
		return out, err
	}

	return svc.Cockroach.UpsertUser(ctx, in)
}

func (svc *Service) User(ctx context.Context, in types.RetrieveUser) (types.User, error) {
	var out types.User

	if err := in.Validate(); err != nil {
		return out, err
	}

	return svc.Cockroach.User(ctx, in.UserID)
}
