package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/haritsetu/backend/internal/models"
)

// GormStore is the relational Store backed by the shared *gorm.DB pool. Each
// call scopes a session to the request context. The pool must be opened with
// gorm.Config.TranslateError so foreign key violations surface as
// ErrUnknownUser; db.Connect does that.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func orderedUpdates(db *gorm.DB) *gorm.DB {
	return db.Order("complaint_updates.id ASC")
}

func (s *GormStore) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(complaint).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return fmt.Errorf("%w: complaint references user %d", ErrUnknownUser, complaint.UserID)
		}
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

func (s *GormStore) FindComplaint(ctx context.Context, id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.db.WithContext(ctx).Preload("Updates", orderedUpdates).First(&complaint, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, fmt.Errorf("failed to fetch complaint %d: %w", id, err)
	}
	return &complaint, nil
}

func (s *GormStore) ListComplaints(ctx context.Context, q ComplaintQuery) ([]models.Complaint, error) {
	db := s.db.WithContext(ctx)
	query := db.Model(&models.Complaint{}).Preload("Updates", orderedUpdates)

	if q.CreatorID != nil {
		query = query.Where("user_id = ?", *q.CreatorID)
	}
	if q.OfficerPool != nil {
		query = query.Where(db.Where("assigned_to = ?", *q.OfficerPool).Or("assigned_to IS NULL"))
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.Category != nil {
		query = query.Where("category = ?", *q.Category)
	}

	complaints := []models.Complaint{}
	err := query.Order("created_at DESC").Order("id DESC").
		Offset(q.Skip).
		Limit(q.normalizedLimit()).
		Find(&complaints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

// lockComplaint loads the complaint row FOR UPDATE inside tx.
func lockComplaint(tx *gorm.DB, id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&complaint, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, err
	}
	return &complaint, nil
}

func (s *GormStore) UpdateComplaint(ctx context.Context, id uint, changes ComplaintChanges) (*models.Complaint, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		complaint, err := lockComplaint(tx, id)
		if err != nil {
			return err
		}

		fields := map[string]interface{}{
			"updated_at": advance(changes.UpdatedAt, complaint.UpdatedAt),
		}
		if changes.Status != nil {
			fields["status"] = *changes.Status
		}
		if changes.Priority != nil {
			fields["priority"] = *changes.Priority
		}
		if changes.ClearAssignee {
			fields["assigned_to"] = nil
		} else if changes.AssignedTo != nil {
			fields["assigned_to"] = *changes.AssignedTo
		}

		return tx.Model(complaint).Updates(fields).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrComplaintNotFound):
			return nil, err
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return nil, fmt.Errorf("%w: assignee of complaint %d", ErrUnknownUser, id)
		}
		return nil, fmt.Errorf("failed to update complaint %d: %w", id, err)
	}

	return s.FindComplaint(ctx, id)
}

func (s *GormStore) AddUpdate(ctx context.Context, update *models.ComplaintUpdate) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		complaint, err := lockComplaint(tx, update.ComplaintID)
		if err != nil {
			return err
		}

		if update.StatusChange != nil {
			update.CreatedAt = advance(update.CreatedAt, complaint.UpdatedAt)
		}
		if err := tx.Omit(clause.Associations).Create(update).Error; err != nil {
			return err
		}

		if update.StatusChange == nil {
			return nil
		}
		return tx.Model(complaint).Updates(map[string]interface{}{
			"status":     *update.StatusChange,
			"updated_at": update.CreatedAt,
		}).Error
	})
	if err != nil {
		update.ID = 0
		switch {
		case errors.Is(err, ErrComplaintNotFound):
			return err
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return fmt.Errorf("%w: author %d of complaint update", ErrUnknownUser, update.UserID)
		}
		return fmt.Errorf("failed to add update to complaint %d: %w", update.ComplaintID, err)
	}
	return nil
}

func (s *GormStore) ListUpdates(ctx context.Context, complaintID uint) ([]models.ComplaintUpdate, error) {
	updates := []models.ComplaintUpdate{}
	err := s.db.WithContext(ctx).
		Where("complaint_id = ?", complaintID).
		Order("id ASC").
		Find(&updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list updates for complaint %d: %w", complaintID, err)
	}
	return updates, nil
}

func (s *GormStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}
	return &user, nil
}

func (s *GormStore) CreateUserIfMissing(ctx context.Context, user *models.User) (bool, error) {
	db := s.db.WithContext(ctx)

	var existing models.User
	err := db.Where("email = ?", user.Email).First(&existing).Error
	if err == nil {
		*user = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to look up user %s: %w", user.Email, err)
	}

	if err := db.Create(user).Error; err != nil {
		return false, fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}
	return true, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Store = (*GormStore)(nil)
