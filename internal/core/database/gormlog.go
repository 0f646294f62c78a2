package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger 把 gorm 的日志接到 zap：出错记 error，慢查询记 warn，其余在 info 级别下记 debug
type gormLogger struct {
	l     *zap.Logger
	level logger.LogLevel
	slow  time.Duration
}

func newGormLogger(l *zap.Logger, level logger.LogLevel, slow time.Duration) logger.Interface {
	return &gormLogger{l: l.Named("gorm").WithOptions(zap.AddCallerSkip(3)), level: level, slow: slow}
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Info {
		g.l.Info(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Warn {
		g.l.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Error {
		g.l.Error(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	// 未找到由仓储转成 nil, nil，不算错误
	case err != nil && g.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.l.Error("sql failed", zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case g.slow > 0 && elapsed > g.slow && g.level >= logger.Warn:
		sql, rows := fc()
		g.l.Warn("slow sql", zap.Duration("elapsed", elapsed), zap.Duration("threshold", g.slow), zap.Int64("rows", rows), zap.String("sql", sql))
	case g.level >= logger.Info:
		sql, rows := fc()
		g.l.Debug("sql", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
