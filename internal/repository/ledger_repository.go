package repository

import (
	"context"

	"quest_reward_backend/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AwardInput struct {
	StudentID   uint
	ClaimType   model.ClaimType
	ReferenceID string
	XP          int
	Coins       int
	Reason      string
}

type AwardResult struct {
	XPAwarded      int  `json:"xp_awarded"`
	CoinsAwarded   int  `json:"coins_awarded"`
	NewXPTotal     int  `json:"new_xp_total"`
	NewCoinsTotal  int  `json:"new_coins_total"`
	AlreadyClaimed bool `json:"already_claimed"`
}

// CreditHook 在首次入账的事务内执行，返回错误则整个入账回滚
type CreditHook func(tx *gorm.DB) error

// LedgerRepository 学生余额的唯一写入方
type LedgerRepository struct {
	DB *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

// Award 按 (学生, 领取类型, 引用) 只入账一次。重复调用不做任何修改，
// 返回首次记录的发放额与总额，并设置 AlreadyClaimed
func (r *LedgerRepository) Award(ctx context.Context, in AwardInput, hooks ...CreditHook) (*AwardResult, error) {
	claim := model.ClaimRecord{
		ClaimKey:    model.ClaimKey(in.StudentID, in.ClaimType, in.ReferenceID),
		StudentID:   in.StudentID,
		ClaimType:   in.ClaimType,
		ReferenceID: in.ReferenceID,
		XPAmount:    in.XP,
		CoinAmount:  in.Coins,
		Reason:      in.Reason,
	}

	var result AwardResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&claim)
		if res.Error != nil {
			return errors.Wrap(res.Error, "insert claim record")
		}
		if res.RowsAffected == 0 {
			var existing model.ClaimRecord
			if err := tx.First(&existing, "claim_key = ?", claim.ClaimKey).Error; err != nil {
				return errors.Wrap(err, "load existing claim record")
			}
			result = *ReplayOf(&existing)
			return nil
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.StudentBalance{StudentID: in.StudentID}).Error; err != nil {
			return errors.Wrap(err, "ensure balance row")
		}

		if err := tx.Model(&model.StudentBalance{}).
			Where("student_id = ?", in.StudentID).
			Updates(map[string]interface{}{
				"xp_total":    gorm.Expr("xp_total + ?", in.XP),
				"coins_total": gorm.Expr("coins_total + ?", in.Coins),
			}).Error; err != nil {
			return errors.Wrap(err, "increment balance")
		}

		var balance model.StudentBalance
		if err := tx.First(&balance, "student_id = ?", in.StudentID).Error; err != nil {
			return errors.Wrap(err, "read balance")
		}

		if err := tx.Model(&claim).Updates(map[string]interface{}{
			"xp_total_after":    balance.XPTotal,
			"coins_total_after": balance.CoinsTotal,
		}).Error; err != nil {
			return errors.Wrap(err, "record balance snapshot")
		}

		for _, hook := range hooks {
			if err := hook(tx); err != nil {
				return err
			}
		}

		result = AwardResult{
			XPAwarded:     in.XP,
			CoinsAwarded:  in.Coins,
			NewXPTotal:    balance.XPTotal,
			NewCoinsTotal: balance.CoinsTotal,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *LedgerRepository) FindClaim(ctx context.Context, studentID uint, claimType model.ClaimType, referenceID string) (*model.ClaimRecord, error) {
	var claim model.ClaimRecord
	err := r.DB.WithContext(ctx).First(&claim, "claim_key = ?", model.ClaimKey(studentID, claimType, referenceID)).Error
	if err != nil {
		return nil, notFound(err, "claim record")
	}
	return &claim, nil
}

// ReplayOf 以重复 Award 的形式返回已记录的领取
func ReplayOf(claim *model.ClaimRecord) *AwardResult {
	return &AwardResult{
		XPAwarded:      claim.XPAmount,
		CoinsAwarded:   claim.CoinAmount,
		NewXPTotal:     claim.XPTotalAfter,
		NewCoinsTotal:  claim.CoinsTotalAfter,
		AlreadyClaimed: true,
	}
}
