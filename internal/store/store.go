// Package store persists complaints, their audit trail and the users they
// reference. Every method takes the request context; the compound writes
// (field updates and comment-with-status-change) are atomic.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/haritsetu/backend/internal/models"
)

var (
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrUserNotFound      = errors.New("user not found")
	// ErrUnknownUser is returned when a write references a user id that does
	// not exist (creator, assignee or comment author).
	ErrUnknownUser = errors.New("referenced user does not exist")
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// ComplaintQuery narrows a complaint listing. CreatorID and OfficerPool are
// the role restrictions; Status and Category are caller filters.
type ComplaintQuery struct {
	CreatorID *uint
	// OfficerPool matches complaints assigned to this id or not assigned at all.
	OfficerPool *uint
	Status      *models.ComplaintStatus
	Category    *string
	Skip        int
	Limit       int
}

func (q ComplaintQuery) normalizedLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	if q.Limit > MaxLimit {
		return MaxLimit
	}
	return q.Limit
}

// ComplaintChanges is a partial update. Nil fields are left untouched;
// ClearAssignee sets assigned_to back to NULL and wins over AssignedTo.
// UpdatedAt is a lower bound: stores move updated_at past the stored value
// when the two collide.
type ComplaintChanges struct {
	Status        *models.ComplaintStatus
	Priority      *models.ComplaintPriority
	AssignedTo    *uint
	ClearAssignee bool
	UpdatedAt     time.Time
}

// advance returns candidate, or prev+1µs when candidate would not move
// updated_at forward. A zero candidate means now.
func advance(candidate, prev time.Time) time.Time {
	if candidate.IsZero() {
		candidate = time.Now().UTC().Truncate(time.Microsecond)
	}
	if !candidate.After(prev) {
		candidate = prev.Add(time.Microsecond)
	}
	return candidate
}

type ComplaintStore interface {
	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	// FindComplaint returns the complaint with its updates in insertion order.
	FindComplaint(ctx context.Context, id uint) (*models.Complaint, error)
	ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error)
	UpdateComplaint(ctx context.Context, id uint, changes ComplaintChanges) (*models.Complaint, error)
	// AddUpdate inserts the audit entry and, when it carries a status change,
	// applies it to the parent complaint in the same transaction. Either both
	// writes happen or neither does.
	AddUpdate(ctx context.Context, update *models.ComplaintUpdate) error
	ListUpdates(ctx context.Context, complaintID uint) ([]models.ComplaintUpdate, error)
}

type UserStore interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
	// CreateUserIfMissing inserts the user unless one with the same email
	// exists. It reports whether a row was created.
	CreateUserIfMissing(ctx context.Context, user *models.User) (bool, error)
}

type Store interface {
	ComplaintStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}
