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

package operator

import (
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Context carries the per-operator resources a lookup-source build touches:
// a logger and a memory-reservation counter. Reservations are advisory; the
// host decides what to do when they grow.
type Context struct {
	logger *zap.Logger

	reservedBytes atomic.Int64
}

func NewContext(logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{logger: logger}
}

func (ctx *Context) Logger() *zap.Logger {
	return ctx.logger
}

func (ctx *Context) ReserveMemory(n int64) {
	ctx.reservedBytes.Add(n)
}

func (ctx *Context) FreeMemory(n int64) {
	ctx.reservedBytes.Add(-n)
}

func (ctx *Context) ReservedBytes() int64 {
	return ctx.reservedBytes.Load()
}

func (ctx *Context) ReservedString() string {
	return humanize.IBytes(uint64(ctx.reservedBytes.Load()))
}
