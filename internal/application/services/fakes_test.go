package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/touchnstars/companion/internal/domain/values"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBridge is a scripted platform permission bridge for one capability.
type fakeBridge struct {
	checkErr     error
	requestErr   error
	block        chan struct{}
	field        string
	checkValue   string
	requestValue string
	checkCalls   int
	requestCalls int
	mu           sync.Mutex
}

func (b *fakeBridge) CheckPermissions(ctx context.Context) (map[string]string, error) {
	b.mu.Lock()
	b.checkCalls++
	block := b.block
	b.mu.Unlock()

	if block != nil {
		<-block
	}
	if b.checkErr != nil {
		return nil, b.checkErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return map[string]string{b.field: b.checkValue}, nil
}

func (b *fakeBridge) RequestPermissions(_ context.Context) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requestCalls++
	if b.requestErr != nil {
		return nil, b.requestErr
	}
	// A granted request is what the OS reports from now on.
	b.checkValue = b.requestValue
	return map[string]string{b.field: b.requestValue}, nil
}

func (b *fakeBridge) calls() (check, request int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.checkCalls, b.requestCalls
}

type fakeSettings struct {
	err   error
	calls int
}

func (s *fakeSettings) OpenAppSettings(_ context.Context) error {
	s.calls++
	return s.err
}

type fakePositions struct {
	err   error
	block chan struct{}
	opts  values.PositionOptions
	pos   values.Position
	calls int
	mu    sync.Mutex
}

func (p *fakePositions) CurrentPosition(_ context.Context, opts values.PositionOptions) (values.Position, error) {
	p.mu.Lock()
	p.calls++
	p.opts = opts
	block := p.block
	p.mu.Unlock()
	if block != nil {
		<-block
	}
	return p.pos, p.err
}

type fakeProfile struct {
	err       error
	direction values.SyncDirection
}

func (p *fakeProfile) SyncDirection(_ context.Context) (values.SyncDirection, error) {
	return p.direction, p.err
}

// MockProfileUpdater is a mock implementation of ports.ProfileUpdater.
type MockProfileUpdater struct {
	mock.Mock
}

func (m *MockProfileUpdater) SetValue(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockMountController is a mock implementation of ports.MountController.
type MockMountController struct {
	mock.Mock
}

func (m *MockMountController) MountAction(ctx context.Context, action string) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}
