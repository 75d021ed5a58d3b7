package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/notkshitijsingh/AgileFlowAI/internal/domain"
	"github.com/notkshitijsingh/AgileFlowAI/internal/metrics"
)

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

func (m *MockSessionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func expiredTotal(t *testing.T, m *metrics.Metrics) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, m.SessionsExpiredTotal.Write(metric))
	return metric.Counter.GetValue()
}

func TestSessionCleanupJob_Run(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ttl := 2 * time.Hour

	tests := []struct {
		name        string
		removed     int
		err         error
		wantExpired float64
	}{
		{name: "성공: idle sessions removed", removed: 3, wantExpired: 3},
		{name: "성공: nothing to remove", removed: 0, wantExpired: 0},
		{name: "실패: repository error", err: errors.New("redis: connection refused"), wantExpired: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockSessionRepository)
			repo.On("DeleteIdleSince", mock.Anything, now.Add(-ttl)).Return(tt.removed, tt.err).Once()

			m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
			job := NewSessionCleanupJob(repo, ttl, m, zap.NewNop())
			job.now = func() time.Time { return now }

			job.Run()

			repo.AssertExpectations(t)
			assert.Equal(t, tt.wantExpired, expiredTotal(t, m))
		})
	}
}

func TestScheduler_Register(t *testing.T) {
	repo := new(MockSessionRepository)
	job := NewSessionCleanupJob(repo, time.Hour, nil, zap.NewNop())
	s := NewScheduler(zap.NewNop())

	require.NoError(t, s.Register("session-cleanup", "@every 10m", job))
	assert.Equal(t, 1, s.Len())

	err := s.Register("broken", "every ten minutes", job)
	assert.Error(t, err)
	assert.Equal(t, 1, s.Len())

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	repo.AssertNotCalled(t, "DeleteIdleSince", mock.Anything, mock.Anything)
}

func TestScheduler_RunsJob(t *testing.T) {
	repo := new(MockSessionRepository)
	called := make(chan struct{}, 1)
	repo.On("DeleteIdleSince", mock.Anything, mock.Anything).Return(0, nil).Run(func(mock.Arguments) {
		select {
		case called <- struct{}{}:
		default:
		}
	})

	s := NewScheduler(zap.NewNop())
	require.NoError(t, s.Register("session-cleanup", "@every 1s", NewSessionCleanupJob(repo, time.Hour, nil, zap.NewNop())))
	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-called:
	case <-time.After(3 * time.Second):
		t.Fatal("cleanup job was not run")
	}
}
