package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type ClaimType string

const (
	ClaimPracticeSet ClaimType = "practice_set"
	ClaimGame        ClaimType = "game"
	ClaimStudyGoal   ClaimType = "study_goal"
	ClaimAssignment  ClaimType = "assignment"
	ClaimChallenge   ClaimType = "challenge"
)

var ClaimTypes = []ClaimType{ClaimPracticeSet, ClaimGame, ClaimStudyGoal, ClaimAssignment, ClaimChallenge}

func (t ClaimType) Valid() bool {
	for _, ct := range ClaimTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// 领取键 UUID 的命名空间
var claimNamespace = uuid.MustParse("6f1d3c8e-4b7a-5e2f-9a0c-2d8b7e6f5a41")

// ClaimKey 领取的幂等键。引用 ID 放在最后，其中的分隔符不会造成冲突
func ClaimKey(studentID uint, claimType ClaimType, referenceID string) string {
	name := strconv.FormatUint(uint64(studentID), 10) + ":" + string(claimType) + ":" + referenceID
	return uuid.NewSHA1(claimNamespace, []byte(name)).String()
}

// ClaimRecord 奖励发放凭证，每个 ClaimKey 至多一行，总额为发放后的余额
type ClaimRecord struct {
	ClaimKey        string    `gorm:"primaryKey;size:36" json:"claim_key"`
	StudentID       uint      `gorm:"index;not null" json:"student_id"`
	ClaimType       ClaimType `gorm:"size:32;not null" json:"claim_type"`
	ReferenceID     string    `gorm:"size:191;not null" json:"reference_id"`
	XPAmount        int       `gorm:"not null" json:"xp_amount"`
	CoinAmount      int       `gorm:"not null" json:"coin_amount"`
	XPTotalAfter    int       `gorm:"not null" json:"xp_total_after"`
	CoinsTotalAfter int       `gorm:"not null" json:"coins_total_after"`
	Reason          string    `gorm:"size:255" json:"reason"`
	CreatedAt       time.Time `json:"created_at"`
}

func (ClaimRecord) TableName() string {
	return "claim_records"
}
