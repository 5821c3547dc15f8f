package repository

import (
	"time"

	"prepmail-backend/internal/interview/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormPrepRepository implements PrepRepository using GORM
type gormPrepRepository struct {
	db *gorm.DB
}

// NewGormPrepRepository creates a new GORM-based PrepRepository
func NewGormPrepRepository(db *gorm.DB) PrepRepository {
	return &gormPrepRepository{db: db}
}

func (r *gormPrepRepository) Upsert(prep *domain.InterviewPrep) error {
	if prep.ID == "" {
		prep.ID = uuid.New().String()
	}
	now := time.Now()
	if prep.CreatedAt.IsZero() {
		prep.CreatedAt = now
	}
	prep.UpdatedAt = now

	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "task_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company", "role", "style", "questions", "updated_at",
		}),
	}).Create(prep).Error
}

func (r *gormPrepRepository) FindByTaskID(taskID string) (*domain.InterviewPrep, error) {
	var prep domain.InterviewPrep
	err := r.db.Where("task_id = ?", taskID).First(&prep).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &prep, nil
}

func (r *gormPrepRepository) Update(prep *domain.InterviewPrep) error {
	prep.UpdatedAt = time.Now()
	return r.db.Save(prep).Error
}

func (r *gormPrepRepository) DeleteByTaskID(taskID string) error {
	return r.db.Delete(&domain.InterviewPrep{}, "task_id = ?", taskID).Error
}
