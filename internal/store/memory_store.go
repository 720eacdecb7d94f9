package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/haritsetu/backend/internal/models"
)

// MemoryStore keeps everything in process. It backs DB_DRIVER=memory and the
// service and controller tests. A single mutex makes each compound write
// atomic. User references are checked like the Postgres foreign keys.
type MemoryStore struct {
	mu            sync.RWMutex
	complaints    map[uint]*models.Complaint
	updates       map[uint][]models.ComplaintUpdate
	users         map[uint]*models.User
	nextComplaint uint
	nextUpdate    uint
	nextUser      uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		complaints: make(map[uint]*models.Complaint),
		updates:    make(map[uint][]models.ComplaintUpdate),
		users:      make(map[uint]*models.User),
	}
}

func cloneUpdate(u models.ComplaintUpdate) models.ComplaintUpdate {
	if u.StatusChange != nil {
		status := *u.StatusChange
		u.StatusChange = &status
	}
	u.User = nil
	return u
}

// snapshot copies a stored complaint and attaches its updates. Callers hold mu.
func (s *MemoryStore) snapshot(c *models.Complaint) models.Complaint {
	out := *c
	if c.AssignedTo != nil {
		assignee := *c.AssignedTo
		out.AssignedTo = &assignee
	}
	out.User, out.Officer = nil, nil
	out.Updates = make([]models.ComplaintUpdate, 0, len(s.updates[c.ID]))
	for _, u := range s.updates[c.ID] {
		out.Updates = append(out.Updates, cloneUpdate(u))
	}
	return out
}

// hasUser reports whether id names a stored user. Callers hold mu.
func (s *MemoryStore) hasUser(id uint) bool {
	_, ok := s.users[id]
	return ok
}

func now(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func (s *MemoryStore) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasUser(complaint.UserID) {
		return fmt.Errorf("%w: complaint references user %d", ErrUnknownUser, complaint.UserID)
	}
	if complaint.AssignedTo != nil && !s.hasUser(*complaint.AssignedTo) {
		return fmt.Errorf("%w: complaint assigned to user %d", ErrUnknownUser, *complaint.AssignedTo)
	}

	s.nextComplaint++
	complaint.ID = s.nextComplaint
	complaint.CreatedAt = now(complaint.CreatedAt)
	if complaint.UpdatedAt.IsZero() {
		complaint.UpdatedAt = complaint.CreatedAt
	}

	stored := *complaint
	stored.Updates = nil
	if complaint.AssignedTo != nil {
		assignee := *complaint.AssignedTo
		stored.AssignedTo = &assignee
	}
	s.complaints[stored.ID] = &stored
	complaint.Updates = []models.ComplaintUpdate{}
	return nil
}

func (s *MemoryStore) FindComplaint(ctx context.Context, id uint) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.complaints[id]
	if !ok {
		return nil, ErrComplaintNotFound
	}
	out := s.snapshot(c)
	return &out, nil
}

func (q ComplaintQuery) matches(c *models.Complaint) bool {
	if q.CreatorID != nil && c.UserID != *q.CreatorID {
		return false
	}
	if q.OfficerPool != nil && c.AssignedTo != nil && *c.AssignedTo != *q.OfficerPool {
		return false
	}
	if q.Status != nil && c.Status != *q.Status {
		return false
	}
	if q.Category != nil && c.Category != *q.Category {
		return false
	}
	return true
}

func (s *MemoryStore) ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*models.Complaint{}
	for _, c := range s.complaints {
		if q.matches(c) {
			matched = append(matched, c)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	result := []models.Complaint{}
	if q.Skip >= len(matched) {
		return result, nil
	}
	matched = matched[q.Skip:]
	if limit := q.normalizedLimit(); len(matched) > limit {
		matched = matched[:limit]
	}
	for _, c := range matched {
		result = append(result, s.snapshot(c))
	}
	return result, nil
}

func (s *MemoryStore) UpdateComplaint(ctx context.Context, id uint, changes ComplaintChanges) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.complaints[id]
	if !ok {
		return nil, ErrComplaintNotFound
	}
	if !changes.ClearAssignee && changes.AssignedTo != nil && !s.hasUser(*changes.AssignedTo) {
		return nil, fmt.Errorf("%w: assignee of complaint %d", ErrUnknownUser, id)
	}

	if changes.Status != nil {
		c.Status = *changes.Status
	}
	if changes.Priority != nil {
		c.Priority = *changes.Priority
	}
	if changes.ClearAssignee {
		c.AssignedTo = nil
	} else if changes.AssignedTo != nil {
		assignee := *changes.AssignedTo
		c.AssignedTo = &assignee
	}
	c.UpdatedAt = advance(changes.UpdatedAt, c.UpdatedAt)

	out := s.snapshot(c)
	return &out, nil
}

func (s *MemoryStore) AddUpdate(ctx context.Context, update *models.ComplaintUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.complaints[update.ComplaintID]
	if !ok {
		return ErrComplaintNotFound
	}
	if !s.hasUser(update.UserID) {
		return fmt.Errorf("%w: author %d of complaint update", ErrUnknownUser, update.UserID)
	}

	if update.StatusChange != nil {
		update.CreatedAt = advance(update.CreatedAt, c.UpdatedAt)
	} else {
		update.CreatedAt = now(update.CreatedAt)
	}
	s.nextUpdate++
	update.ID = s.nextUpdate
	s.updates[c.ID] = append(s.updates[c.ID], cloneUpdate(*update))

	if update.StatusChange != nil {
		c.Status = *update.StatusChange
		c.UpdatedAt = update.CreatedAt
	}
	return nil
}

func (s *MemoryStore) ListUpdates(ctx context.Context, complaintID uint) ([]models.ComplaintUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	updates := []models.ComplaintUpdate{}
	for _, u := range s.updates[complaintID] {
		updates = append(updates, cloneUpdate(u))
	}
	return updates, nil
}

func (s *MemoryStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *MemoryStore) CreateUserIfMissing(ctx context.Context, user *models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			*user = *existing
			return false, nil
		}
	}

	s.nextUser++
	user.ID = s.nextUser
	user.CreatedAt = now(user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	stored := *user
	s.users[user.ID] = &stored
	return true, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
