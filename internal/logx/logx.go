// logx.go: zap logger construction for the harness binaries
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package logx builds the zap loggers used by the eurus command-line
// harnesses. The channel library itself never logs; hot paths stay silent
// and callers observe state through errors and Stats.
package logx

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Conf holds logger configuration options.
type Conf struct {
	Output     string // "stdout" or "file"
	Path       string // log file path when Output is "file"
	Level      string // debug, info, warn, error
	RotateSize int    // max file size in MB before rotation
	RotateNum  int    // rotated files to retain
}

// SetDefaults returns the default configuration.
func SetDefaults() Conf {
	return Conf{
		Output:     "stdout",
		Path:       "eurus.log",
		Level:      "info",
		RotateSize: 100,
		RotateNum:  10,
	}
}

// New initializes a zap logger from conf.
func New(conf Conf) (*zap.Logger, error) {
	var writeSyncer zapcore.WriteSyncer

	switch conf.Output {
	case "", "stdout":
		writeSyncer = zapcore.AddSync(os.Stdout)
	case "file":
		if conf.Path == "" {
			return nil, fmt.Errorf("logx: path is required when output is %q", conf.Output)
		}
		rotateSize := conf.RotateSize
		if rotateSize <= 0 {
			rotateSize = 100
		}
		rotateNum := conf.RotateNum
		if rotateNum <= 0 {
			rotateNum = 10
		}
		writeSyncer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    rotateSize,
			MaxBackups: rotateNum,
		})
	default:
		return nil, fmt.Errorf("logx: unknown output %q", conf.Output)
	}

	core := zapcore.NewCore(getEncoder(), writeSyncer, parseLogLevel(conf.Level))
	return zap.New(core, zap.AddCaller()), nil
}

// getEncoder returns the console encoder shared by all harness loggers.
func getEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// parseLogLevel maps a level name to a zap level, defaulting to info.
func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
