// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/BurntSushi/toml"

	"github.com/zirpins/presto/pkg/common/perr"
)

type Config struct {
	Join JoinConfig `toml:"join"`
	Log  LogConfig  `toml:"log"`
}

// JoinConfig controls the join kernel compiler. The dump switches are
// diagnostics only and have no semantic effect.
type JoinConfig struct {
	// SpecializationCacheCapacity bounds the per-compiler count of
	// memoized lookup-source factories.
	SpecializationCacheCapacity int `toml:"specialization-cache-capacity"`

	// DumpKernelSelection logs the kernel chosen for every compiled shape.
	DumpKernelSelection bool `toml:"dump-kernel-selection"`

	// DumpKernelTo appends a "shape => kernel" line per compiled shape.
	DumpKernelTo string `toml:"dump-kernel-to"`

	// VerifyKernels exercises every freshly compiled factory on an empty
	// build side before it is published.
	VerifyKernels bool `toml:"verify-kernels"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Filename   string `toml:"filename"`
	MaxSize    int    `toml:"max-size"`
	MaxDays    int    `toml:"max-days"`
	MaxBackups int    `toml:"max-backups"`
}

func Default() Config {
	return Config{
		Join: JoinConfig{
			SpecializationCacheCapacity: 1000,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSize:    512,
			MaxDays:    30,
			MaxBackups: 10,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, perr.NewBadConfig("decode %s: %s", path, err)
	}
	return cfg, cfg.validate()
}

func Parse(text string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, &cfg); err != nil {
		return cfg, perr.NewBadConfig("decode config: %s", err)
	}
	return cfg, cfg.validate()
}

func (cfg *Config) validate() error {
	if cfg.Join.SpecializationCacheCapacity <= 0 {
		return perr.NewBadConfig("specialization-cache-capacity must be positive, got %d",
			cfg.Join.SpecializationCacheCapacity)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return perr.NewBadConfig("unknown log format %q", cfg.Log.Format)
	}
	return nil
}
