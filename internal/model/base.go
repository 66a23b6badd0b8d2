package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 不做软删除，可领取实体被删除后不能再以同一 ID 出现
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// swagger:model
type BaseModel struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamps
}

// UUIDBase 字符串主键。客户端提供的 ID（作答 ID）原样保存，其余插入时生成 UUID
// swagger:model
type UUIDBase struct {
	ID string `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Timestamps
}

func (b *UUIDBase) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
