package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haritsetu/backend/internal/events"
	"github.com/haritsetu/backend/internal/logger"
	"github.com/haritsetu/backend/internal/models"
	"github.com/haritsetu/backend/internal/store"
)

// Actor is the authenticated caller as asserted by the identity provider.
type Actor struct {
	ID   uint
	Role models.UserRole
}

func (a Actor) IsFarmer() bool  { return a.Role == models.RoleFarmer }
func (a Actor) IsOfficer() bool { return a.Role == models.RoleOfficer }

// canView reports whether a may read (and comment on) c. Only farmers are
// restricted, and only to their own complaints.
func (a Actor) canView(c *models.Complaint) bool {
	return !a.IsFarmer() || c.UserID == a.ID
}

type SubmitInput struct {
	Title       string
	Description string
	Category    string
	Location    string
}

type ListFilter struct {
	Status   *models.ComplaintStatus
	Category *string
	Skip     int
	Limit    int
}

// FieldChanges is an officer's partial update; nil fields are left alone.
// ClearAssignee returns the complaint to the unassigned pool and wins over
// AssignedTo.
type FieldChanges struct {
	Status        *models.ComplaintStatus
	Priority      *models.ComplaintPriority
	AssignedTo    *uint
	ClearAssignee bool
}

type CommentInput struct {
	Comment      string
	StatusChange *models.ComplaintStatus
}

type GrievanceService struct {
	store      store.ComplaintStore
	publisher  events.Publisher
	now        func() time.Time
	lockClosed bool
}

type Option func(*GrievanceService)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *GrievanceService) { s.now = now }
}

// WithLockClosed makes "closed" terminal: once closed, the status can no
// longer change.
func WithLockClosed(lock bool) Option {
	return func(s *GrievanceService) { s.lockClosed = lock }
}

func NewGrievanceService(complaints store.ComplaintStore, publisher events.Publisher, opts ...Option) *GrievanceService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &GrievanceService{
		store:     complaints,
		publisher: publisher,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GrievanceService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.WithError(err, "grievance_service").Warn("Failed to publish complaint event")
	}
}

func (s *GrievanceService) find(ctx context.Context, id uint) (*models.Complaint, error) {
	complaint, err := s.store.FindComplaint(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrComplaintNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load complaint: %w", err)
	}
	return complaint, nil
}

func (s *GrievanceService) checkTransition(c *models.Complaint, next *models.ComplaintStatus) error {
	if next == nil {
		return nil
	}
	if !next.Valid() {
		return invalid("status", fmt.Sprintf("%q is not a valid status", *next))
	}
	if s.lockClosed && c.Status == models.StatusClosed && *next != models.StatusClosed {
		return fmt.Errorf("%w: complaint %d is closed", ErrInvalidTransition, c.ID)
	}
	return nil
}

// Submit files a new complaint on behalf of actor.
func (s *GrievanceService) Submit(ctx context.Context, actor Actor, in SubmitInput) (*models.Complaint, error) {
	for _, field := range []struct{ name, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"category", in.Category},
		{"location", in.Location},
	} {
		if strings.TrimSpace(field.value) == "" {
			return nil, invalid(field.name, "is required")
		}
	}

	at := s.now()
	complaint := &models.Complaint{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		UserID:      actor.ID,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if err := s.store.CreateComplaint(ctx, complaint); err != nil {
		if errors.Is(err, store.ErrUnknownUser) {
			return nil, invalid("user_id", "does not reference a known user")
		}
		logger.WithError(err, "grievance_service").Error("Failed to create complaint")
		return nil, err
	}
	if complaint.Updates == nil {
		complaint.Updates = []models.ComplaintUpdate{}
	}

	logger.WithComplaint(complaint.ID, actor.ID).Info("Complaint submitted")
	s.publish(ctx, events.NewComplaintEvent(events.ComplaintSubmitted, actor.ID, complaint, at))
	return complaint, nil
}

// List returns the complaints visible to actor, newest first. Farmers see
// their own; officers see theirs plus the unassigned pool; everyone else is
// unrestricted.
func (s *GrievanceService) List(ctx context.Context, actor Actor, filter ListFilter) ([]models.Complaint, error) {
	if filter.Skip < 0 {
		return nil, invalid("skip", "must not be negative")
	}
	if filter.Limit < 0 {
		return nil, invalid("limit", "must not be negative")
	}

	q := store.ComplaintQuery{
		Status:   filter.Status,
		Category: filter.Category,
		Skip:     filter.Skip,
		Limit:    filter.Limit,
	}
	switch actor.Role {
	case models.RoleFarmer:
		q.CreatorID = &actor.ID
	case models.RoleOfficer:
		q.OfficerPool = &actor.ID
	}

	complaints, err := s.store.ListComplaints(ctx, q)
	if err != nil {
		logger.WithError(err, "grievance_service").Error("Failed to list complaints")
		return nil, err
	}
	return complaints, nil
}

func (s *GrievanceService) Get(ctx context.Context, actor Actor, id uint) (*models.Complaint, error) {
	complaint, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(complaint) {
		return nil, forbidden("not authorized to view this complaint")
	}
	return complaint, nil
}

// UpdateFields applies an officer's partial update to status, priority and
// assignee. updated_at is refreshed even when no field is given; the store
// stamps it under the row lock so it never moves backwards.
func (s *GrievanceService) UpdateFields(ctx context.Context, actor Actor, id uint, changes FieldChanges) (*models.Complaint, error) {
	if !actor.IsOfficer() {
		return nil, forbidden("only officers can update complaints")
	}
	if changes.Priority != nil && !changes.Priority.Valid() {
		return nil, invalid("priority", fmt.Sprintf("%q is not a valid priority", *changes.Priority))
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(current, changes.Status); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateComplaint(ctx, id, store.ComplaintChanges{
		Status:        changes.Status,
		Priority:      changes.Priority,
		AssignedTo:    changes.AssignedTo,
		ClearAssignee: changes.ClearAssignee,
		UpdatedAt:     s.now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrComplaintNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, store.ErrUnknownUser) {
			return nil, invalid("assigned_to", "does not reference a known user")
		}
		logger.WithError(err, "grievance_service").Error("Failed to update complaint")
		return nil, err
	}

	logger.WithComplaint(id, actor.ID).WithField("status", updated.Status).Info("Complaint updated")
	s.publish(ctx, events.NewComplaintEvent(events.ComplaintUpdated, actor.ID, updated, updated.UpdatedAt))
	return updated, nil
}

// AddComment appends an entry to the complaint's audit trail. A status
// change carried by the comment is applied in the same transaction.
func (s *GrievanceService) AddComment(ctx context.Context, actor Actor, id uint, in CommentInput) (*models.ComplaintUpdate, error) {
	complaint, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canView(complaint) {
		return nil, forbidden("not authorized to comment on this complaint")
	}
	if strings.TrimSpace(in.Comment) == "" {
		return nil, invalid("comment", "is required")
	}
	if err := s.checkTransition(complaint, in.StatusChange); err != nil {
		return nil, err
	}

	update := &models.ComplaintUpdate{
		ComplaintID:  id,
		UserID:       actor.ID,
		Comment:      in.Comment,
		StatusChange: in.StatusChange,
		CreatedAt:    s.now(),
	}
	if err := s.store.AddUpdate(ctx, update); err != nil {
		if errors.Is(err, store.ErrComplaintNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, store.ErrUnknownUser) {
			return nil, invalid("user_id", "does not reference a known user")
		}
		logger.WithError(err, "grievance_service").Error("Failed to add complaint comment")
		return nil, err
	}

	entry := logger.WithComplaint(id, actor.ID).WithField("update_id", update.ID)
	if in.StatusChange != nil {
		complaint.Status = *in.StatusChange
		complaint.UpdatedAt = update.CreatedAt
		entry = entry.WithField("status_change", *in.StatusChange)
	}
	entry.Info("Complaint comment added")

	event := events.NewComplaintEvent(events.ComplaintCommented, actor.ID, complaint, update.CreatedAt)
	event.UpdateID = &update.ID
	s.publish(ctx, event)
	return update, nil
}

// ListComments returns the audit trail in insertion order, subject to the
// same visibility rule as Get.
func (s *GrievanceService) ListComments(ctx context.Context, actor Actor, id uint) ([]models.ComplaintUpdate, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	updates, err := s.store.ListUpdates(ctx, id)
	if err != nil {
		logger.WithError(err, "grievance_service").Error("Failed to list complaint comments")
		return nil, err
	}
	return updates, nil
}
