package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/vibe-gaming/auth-service/internal/queue/task"
	"github.com/vibe-gaming/auth-service/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPurger struct {
	mock.Mock
}

func (m *mockPurger) Purge(ctx context.Context) (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func TestPurgeExpiredTokensProcessor(t *testing.T) {
	purger := new(mockPurger)
	purger.On("Purge").Return(int64(3), nil).Once()
	purger.On("Purge").Return(int64(0), errors.New("db is down")).Once()

	p := NewPurgeExpiredTokensProcessor(&worker.Workers{ExpiredTokensPurger: purger})

	assert.NoError(t, p.ProcessTask(context.Background(), task.NewPurgeExpiredTokensTask()))
	assert.ErrorContains(t, p.ProcessTask(context.Background(), task.NewPurgeExpiredTokensTask()), "db is down")
	purger.AssertExpectations(t)
}
