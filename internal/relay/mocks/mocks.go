package mocks

import (
	"context"

	"github.com/strawberrylab/masterbot/internal/domain"
	"github.com/stretchr/testify/mock"
)

type IdentityStore struct {
	mock.Mock
}

func (m *IdentityStore) Resolve(ctx context.Context, masterID int64) (int64, error) {
	args := m.Called(ctx, masterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *IdentityStore) ByChatSession(ctx context.Context, chatID int64) (*domain.IdentityRecord, error) {
	args := m.Called(ctx, chatID)
	if rec := args.Get(0); rec != nil {
		return rec.(*domain.IdentityRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *IdentityStore) Upsert(ctx context.Context, rec *domain.IdentityRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

type Sender struct {
	mock.Mock
}

func (m *Sender) Send(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}
