package services_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/haritsetu/backend/internal/events"
	"github.com/haritsetu/backend/internal/models"
	"github.com/haritsetu/backend/internal/store"
)

// MockComplaintStore is a testify mock of store.ComplaintStore.
type MockComplaintStore struct {
	mock.Mock
}

func (m *MockComplaintStore) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockComplaintStore) FindComplaint(ctx context.Context, id uint) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockComplaintStore) ListComplaints(ctx context.Context, q store.ComplaintQuery) ([]models.Complaint, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockComplaintStore) UpdateComplaint(ctx context.Context, id uint, changes store.ComplaintChanges) (*models.Complaint, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockComplaintStore) AddUpdate(ctx context.Context, update *models.ComplaintUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockComplaintStore) ListUpdates(ctx context.Context, complaintID uint) ([]models.ComplaintUpdate, error) {
	args := m.Called(ctx, complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ComplaintUpdate), args.Error(1)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
