// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package inspect

import (
	"fmt"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sassoftware/viya-pdf-inspect/filter"
	"github.com/sassoftware/viya-pdf-inspect/internal/cache"
	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/xref"
)

type ParsingMode string

const (
	// Strict turns any diagnostic into a file-level error.
	Strict ParsingMode = "strict"
	// BestEffort returns the report and leaves diagnostics to the caller.
	BestEffort ParsingMode = "best-effort"
)

type Config struct {
	MaxConcurrentPDFs int           `validate:"min=1,max=64"`
	WorkerTimeout     time.Duration `validate:"required"`
	ParsingMode       ParsingMode   `validate:"oneof=strict best-effort"`
	MaxRetries        int           `validate:"min=0,max=3"`
	MergeOrder        string        `validate:"oneof=oldest-wins newest-wins"`
	MaxDecodedSize    int64         `validate:"min=1,max=1073741824"`
	CachePath         string
	DebugOn           bool // pass debug messages to Logger
	Logger            logger.LogFunc
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxConcurrentPDFs: min(runtime.NumCPU(), 8),
		WorkerTimeout:     30 * time.Second,
		ParsingMode:       BestEffort,
		MaxRetries:        1,
		MergeOrder:        xref.OldestWins.String(),
		MaxDecodedSize:    filter.DefaultMaxDecodedSize,
		DebugOn:           false,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating Config Object")
	validate := validator.New()
	return validate.Struct(cfg)
}

// mergeOrder returns the configured order, OldestWins for an empty value.
func (cfg *Config) mergeOrder() xref.MergeOrder {
	order, err := xref.ParseMergeOrder(cfg.MergeOrder)
	if err != nil {
		return xref.OldestWins
	}
	return order
}

// maxDecodedSize falls back to the codec default when unset.
func (cfg *Config) maxDecodedSize() int64 {
	if cfg == nil || cfg.MaxDecodedSize <= 0 {
		return filter.DefaultMaxDecodedSize
	}
	return cfg.MaxDecodedSize
}

// fingerprint digests the settings that change what Build produces. The
// parsing mode is not among them: the verdict is applied after the build.
func (cfg *Config) fingerprint() uint64 {
	return cache.Digest([]byte(fmt.Sprintf("%s\x00%d", cfg.mergeOrder(), cfg.maxDecodedSize())))
}
