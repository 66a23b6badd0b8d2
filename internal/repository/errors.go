package repository

import (
	"quest_reward_backend/internal/util"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// notFound 将 gorm 的记录不存在映射为 util.ErrNotFound
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(util.ErrNotFound, what)
	}
	return errors.Wrapf(err, "load %s", what)
}
