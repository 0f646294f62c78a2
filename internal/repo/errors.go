package repo

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// isDupKey 同时识别 gorm.ErrDuplicatedKey（TranslateError 开启时）与各驱动的原始报错
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

func notFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
