// config.go: Shared configuration for the harness binaries
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package harness carries the configuration shared by the eurus
// command-line harnesses. Values are resolved in the usual precedence:
// flags over EURUS_* environment variables over an optional config file
// over defaults.
package harness

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agilira/eurus/internal/logx"
)

// Config is the resolved harness configuration.
type Config struct {
	Channel  string // shared region id
	PageSize string // standard, huge or gigantic
	Log      logx.Conf
}

// RegisterFlags declares the flags every harness accepts.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "optional config file")
	flags.String("channel", "eurus", "shared memory region id")
	flags.String("page-size", "standard", "backing pages: standard, huge or gigantic")
	flags.String("log.output", "stdout", "log output: stdout or file")
	flags.String("log.path", "eurus.log", "log file path when log.output is file")
	flags.String("log.level", "info", "log level: debug, info, warn or error")
}

// Load resolves the configuration from parsed flags, environment and an
// optional config file.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := logx.SetDefaults()
	v.SetDefault("channel", "eurus")
	v.SetDefault("page-size", "standard")
	v.SetDefault("log.output", defaults.Output)
	v.SetDefault("log.path", defaults.Path)
	v.SetDefault("log.level", defaults.Level)
	v.SetDefault("log.rotate-size", defaults.RotateSize)
	v.SetDefault("log.rotate-num", defaults.RotateNum)

	v.SetEnvPrefix("EURUS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("harness: bind flags: %w", err)
	}

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("harness: read config: %w", err)
		}
	}

	return &Config{
		Channel:  v.GetString("channel"),
		PageSize: v.GetString("page-size"),
		Log: logx.Conf{
			Output:     v.GetString("log.output"),
			Path:       v.GetString("log.path"),
			Level:      v.GetString("log.level"),
			RotateSize: v.GetInt("log.rotate-size"),
			RotateNum:  v.GetInt("log.rotate-num"),
		},
	}, nil
}
