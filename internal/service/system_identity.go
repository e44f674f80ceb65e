package service

import (
	"context"
	"errors"
	"fmt"

	"alertdesk.app/intake/common/id"
	"alertdesk.app/intake/internal/model"
	"alertdesk.app/intake/internal/store"
)

// SystemIdentity resolves the account automated tickets are created by.
type SystemIdentity interface {
	GetOrCreateSystemUser(ctx context.Context) (int64, error)
}

type systemIdentity struct {
	users store.UserStore
	email string
	name  string
}

func NewSystemIdentity(users store.UserStore, email, name string) SystemIdentity {
	return &systemIdentity{users: users, email: email, name: name}
}

func (s *systemIdentity) GetOrCreateSystemUser(ctx context.Context) (int64, error) {
	user, err := s.users.GetByEmail(ctx, s.email)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("looking up system user: %w", err)
	}

	user, err = s.users.UpsertSystemUser(ctx, &model.User{
		ID:       id.New(),
		Name:     s.name,
		Email:    s.email,
		IsSystem: true,
	})
	if err != nil {
		return 0, fmt.Errorf("creating system user: %w", err)
	}
	return user.ID, nil
}
