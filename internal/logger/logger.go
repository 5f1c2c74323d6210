// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logger builds the zap loggers used by msgqdemo.
package logger

import (
	"fmt"
	"io"
	"time"

	"code.hybscloud.com/msgq/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production logger writing to stdout.
func New(cfg config.Logger) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig = encoderConfig()
	zcfg.OutputPaths = []string{"stdout"}
	zcfg.Encoding = cfg.Encoding
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// NewWriter is New writing to w instead of stdout.
func NewWriter(cfg config.Logger, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	var enc zapcore.Encoder
	switch cfg.Encoding {
	case "json":
		enc = zapcore.NewJSONEncoder(encoderConfig())
	case "console":
		enc = zapcore.NewConsoleEncoder(encoderConfig())
	default:
		return nil, fmt.Errorf("logger: unknown encoding %q", cfg.Encoding)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.CallerKey = zapcore.OmitKey
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	return ec
}
