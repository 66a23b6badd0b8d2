package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// MasteryRecord 学生在某考试分类的累计正确率。
// Unlocked 只能由否变是，置位后它与 UnlockedAt 不再改变
type MasteryRecord struct {
	BaseModel
	StudentID          uint       `gorm:"uniqueIndex:idx_mastery_student_category;not null" json:"student_id"`
	Category           string     `gorm:"uniqueIndex:idx_mastery_student_category;size:100;not null" json:"category"`
	QuestionsAttempted int        `gorm:"not null;default:0" json:"questions_attempted"`
	QuestionsCorrect   int        `gorm:"not null;default:0" json:"questions_correct"`
	Percentage         float64    `gorm:"not null;default:0" json:"percentage"`
	Unlocked           bool       `gorm:"not null;default:false" json:"unlocked"`
	UnlockedAt         *time.Time `json:"unlocked_at,omitempty"`
}

func (MasteryRecord) TableName() string {
	return "mastery_records"
}

// Apply 累加一批答题并返回本批是否解锁
func (m *MasteryRecord) Apply(attempted, correct, unlockThreshold int, now time.Time) bool {
	m.QuestionsAttempted += attempted
	m.QuestionsCorrect += correct
	if m.QuestionsAttempted > 0 {
		m.Percentage = float64(m.QuestionsCorrect) * 100 / float64(m.QuestionsAttempted)
	}

	if m.Unlocked {
		return false
	}
	if m.Percentage >= float64(unlockThreshold) {
		m.Unlocked = true
		m.UnlockedAt = &now
		return true
	}
	return false
}

var masteryEventNamespace = uuid.MustParse("b3e0f6a2-7c19-5d84-8e3f-0a9c4b2d1e57")

// MasteryEvent 标记已计入掌握度的评分事件
type MasteryEvent struct {
	EventKey  string    `gorm:"primaryKey;size:36"`
	StudentID uint      `gorm:"index;not null"`
	Category  string    `gorm:"size:100;not null"`
	CreatedAt time.Time
}

func (MasteryEvent) TableName() string {
	return "mastery_events"
}

// MasteryEventKey 评分事件在分类下的防重放键
func MasteryEventKey(studentID uint, category, reference string) string {
	name := strconv.FormatUint(uint64(studentID), 10) + ":" + strconv.Itoa(len(category)) + ":" + category + ":" + reference
	return uuid.NewSHA1(masteryEventNamespace, []byte(name)).String()
}
