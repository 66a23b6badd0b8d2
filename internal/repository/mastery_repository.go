package repository

import (
	"context"
	"time"

	"quest_reward_backend/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MasteryDelta 计入某分类的一批评分结果，设置 EventKey 时最多计入一次
type MasteryDelta struct {
	StudentID uint
	Category  string
	Attempted int
	Correct   int
	EventKey  string
}

type MasteryRepository struct {
	DB *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{DB: db}
}

// Apply 在行锁下累加并返回是否因此解锁，重放的事件不修改记录
func (r *MasteryRepository) Apply(ctx context.Context, d MasteryDelta, unlockThreshold int, now time.Time) (*model.MasteryRecord, bool, error) {
	var record model.MasteryRecord
	var unlocked bool

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		replay := false
		if d.EventKey != "" {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.MasteryEvent{
				EventKey:  d.EventKey,
				StudentID: d.StudentID,
				Category:  d.Category,
			})
			if res.Error != nil {
				return errors.Wrap(res.Error, "insert mastery event")
			}
			replay = res.RowsAffected == 0
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "category"}},
			DoNothing: true,
		}).Create(&model.MasteryRecord{StudentID: d.StudentID, Category: d.Category}).Error; err != nil {
			return errors.Wrap(err, "init mastery record")
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("student_id = ? AND category = ?", d.StudentID, d.Category).
			First(&record).Error; err != nil {
			return errors.Wrap(err, "lock mastery record")
		}

		if replay {
			return nil
		}

		unlocked = record.Apply(d.Attempted, d.Correct, unlockThreshold, now)
		return errors.Wrap(tx.Save(&record).Error, "save mastery record")
	})
	if err != nil {
		return nil, false, err
	}
	return &record, unlocked, nil
}

func (r *MasteryRepository) FindByStudentCategory(ctx context.Context, studentID uint, category string) (*model.MasteryRecord, error) {
	var record model.MasteryRecord
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND category = ?", studentID, category).
		First(&record).Error
	if err != nil {
		return nil, notFound(err, "mastery record")
	}
	return &record, nil
}
