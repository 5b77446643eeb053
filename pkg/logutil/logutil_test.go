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

package logutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zirpins/presto/pkg/config"
)

func TestGlobalLoggerIsAlwaysUsable(t *testing.T) {
	require.NotNil(t, GetGlobalLogger())
	Info("reachable before any setup")
}

func TestSetupReplacesGlobalLogger(t *testing.T) {
	before := GetGlobalLogger()
	cfg := config.Default().Log
	cfg.Level = "debug"
	cfg.Format = "json"
	Setup(cfg)
	require.NotSame(t, before, GetGlobalLogger())
	require.True(t, GetGlobalLogger().Core().Enabled(zap.DebugLevel))
}

func TestSetupFileSink(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "presto.log")
	cfg := config.Default().Log
	cfg.Format = "json"
	cfg.Filename = logFile
	Setup(cfg)

	Info("hello from the join compiler", zap.Int("rows", 42))
	require.NoError(t, GetGlobalLogger().Sync())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello from the join compiler")

	Setup(config.Default().Log)
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	cfg := config.Default().Log
	cfg.Level = "nonsense"
	Setup(cfg)
	require.False(t, GetGlobalLogger().Core().Enabled(zap.DebugLevel))
	require.True(t, GetGlobalLogger().Core().Enabled(zap.InfoLevel))
	Setup(config.Default().Log)
}
