package logutil

import (
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig 描述 logger 的等級、格式與輸出位置
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`   // console 或 json
	Filename   string `toml:"filename"` // 空字串時輸出到 stderr
	MaxSize    int    `toml:"max-size"` // MB
	MaxDays    int    `toml:"max-days"`
	MaxBackups int    `toml:"max-backups"`
}

func DefaultConfig() LogConfig {
	return LogConfig{
		Level:   "info",
		Format:  "console",
		MaxSize: 64,
	}
}

func (cfg LogConfig) level() (zapcore.Level, error) {
	var lvl zapcore.Level
	if cfg.Level == "" {
		return zapcore.InfoLevel, nil
	}
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		return lvl, errors.Wrapf(err, "log level %q", cfg.Level)
	}
	return lvl, nil
}

func (cfg LogConfig) encoder() (zapcore.Encoder, error) {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	switch cfg.Format {
	case "", "console":
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(ec), nil
	case "json":
		return zapcore.NewJSONEncoder(ec), nil
	}
	return nil, errors.Newf("unsupported log format %q", cfg.Format)
}

func (cfg LogConfig) syncer() zapcore.WriteSyncer {
	if cfg.Filename == "" {
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxDays,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	})
}

// Validate 檢查等級與格式是否可以被解析
func (cfg LogConfig) Validate() error {
	if _, err := cfg.level(); err != nil {
		return err
	}
	_, err := cfg.encoder()
	return err
}

// NewLogger 依設定建立 zap logger
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	lvl, err := cfg.level()
	if err != nil {
		return nil, err
	}
	enc, err := cfg.encoder()
	if err != nil {
		return nil, err
	}
	core := zapcore.NewCore(enc, cfg.syncer(), zap.NewAtomicLevelAt(lvl))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
