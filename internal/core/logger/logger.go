package logger

import (
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"gradebook/internal/core/config"
)

// New 控制台必开；log.file.enable 时额外写入按大小切割的文件。返回的 cleanup 负责 Sync 与关闭文件
func New(c config.Log, fields ...zap.Field) (*zap.Logger, func()) {
	var lvl zapcore.Level
	if err := lvl.Set(c.Level); err != nil {
		lvl = zapcore.InfoLevel
	}
	enc := encoder(c.JSON)

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl)}
	var rot *lumberjack.Logger
	if c.File.Enable {
		rot = rotator(c.File)
		// 文件里不要颜色码
		cores = append(cores, zapcore.NewCore(encoder(true), zapcore.AddSync(rot), lvl))
	}

	// 同一秒内同样的消息超过 100 条后每 100 条取 1 条
	core := zapcore.NewSamplerWithOptions(zapcore.NewTee(cores...), time.Second, 100, 100)

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel), zap.Fields(fields...)}
	if !c.JSON {
		opts = append(opts, zap.Development())
	}
	l := zap.New(core, opts...)
	return l, func() {
		_ = l.Sync()
		if rot != nil {
			_ = rot.Close()
		}
	}
}

func encoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func rotator(f config.LogFile) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   f.Filename,
		MaxSize:    max(1, f.MaxSizeMB),
		MaxBackups: max(0, f.MaxBackups),
		MaxAge:     max(0, f.MaxAgeDays),
		Compress:   f.Compress,
	}
}

// ToStdLogger 供 http.Server.ErrorLog 等只认 *log.Logger 的地方使用
func ToStdLogger(l *zap.Logger, level zapcore.Level) (*log.Logger, error) {
	return zap.NewStdLogAt(l, level)
}

// RedirectStdLog 第三方库经标准 log 打出的内容转进 zap；返回值用于还原
func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
