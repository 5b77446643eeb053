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

// Package gen compiles the join kernels: given a type vector and the join
// channel selection it produces a pages hash strategy specialized for that
// shape, and a lookup-source factory that indexes a build side with it.
package gen

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zirpins/presto/pkg/common/perr"
	"github.com/zirpins/presto/pkg/config"
	"github.com/zirpins/presto/pkg/container/types"
	"github.com/zirpins/presto/pkg/container/vector"
	"github.com/zirpins/presto/pkg/logutil"
	"github.com/zirpins/presto/pkg/operator"
)

// PagesHashStrategyFactory binds one compiled kernel to successive build
// sides. Creating a strategy only pins the channel lists; no per-shape work
// is repeated.
type PagesHashStrategyFactory struct {
	kernel string
	create func(channels [][]*vector.Vector) operator.PagesHashStrategy
}

func (f *PagesHashStrategyFactory) Kernel() string {
	return f.kernel
}

func (f *PagesHashStrategyFactory) CreatePagesHashStrategy(channels [][]*vector.Vector) operator.PagesHashStrategy {
	return f.create(channels)
}

// LookupSourceFactory builds lookup sources for one compiled shape.
type LookupSourceFactory struct {
	typs            []types.Type
	joinChannels    []int
	strategyFactory *PagesHashStrategyFactory
}

func (f *LookupSourceFactory) StrategyFactory() *PagesHashStrategyFactory {
	return f.strategyFactory
}

// CreateLookupSource indexes a build side: channels holds one vector list
// per channel, addresses one packed (batch, position) per row in append
// order.
func (f *LookupSourceFactory) CreateLookupSource(addresses []uint64, channels [][]*vector.Vector, opCtx *operator.Context) (operator.LookupSource, error) {
	if len(channels) != len(f.typs) {
		return nil, perr.NewInvalidShape("build side has %d channels, factory compiled for %d", len(channels), len(f.typs))
	}
	strategy := f.strategyFactory.CreatePagesHashStrategy(channels)
	return operator.NewInMemoryJoinHash(addresses, strategy, opCtx)
}

// CreateLookupSourceFromIndex is CreateLookupSource fed from a pages index.
func (f *LookupSourceFactory) CreateLookupSourceFromIndex(index *operator.PagesIndex, opCtx *operator.Context) (operator.LookupSource, error) {
	if opCtx != nil {
		opCtx.Logger().Debug("indexing build side",
			zap.Int("rows", index.PositionCount()),
			zap.Uint64("estimatedDistinctKeys", index.EstimatedDistinctKeys()))
	}
	return f.CreateLookupSource(index.Addresses(), index.Channels(), opCtx)
}

// JoinCompiler memoizes compiled factories by shape. Concurrent misses for
// one shape observe exactly one compilation.
type JoinCompiler struct {
	cfg   config.JoinConfig
	cache *shapeCache
	group singleflight.Group

	compileCount atomic.Int64

	dumpMu sync.Mutex
}

func NewJoinCompiler(cfg config.JoinConfig) *JoinCompiler {
	if cfg.SpecializationCacheCapacity <= 0 {
		cfg.SpecializationCacheCapacity = config.Default().Join.SpecializationCacheCapacity
	}
	return &JoinCompiler{
		cfg:   cfg,
		cache: newShapeCache(cfg.SpecializationCacheCapacity),
	}
}

func (c *JoinCompiler) CompileLookupSourceFactory(typs []types.Type, joinChannels []int) (*LookupSourceFactory, error) {
	key := shapeKey(typs, joinChannels)
	if factory, ok := c.cache.Get(key); ok {
		return factory, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if factory, ok := c.cache.Get(key); ok {
			return factory, nil
		}
		factory, err := c.internalCompileLookupSourceFactory(typs, joinChannels)
		if err != nil {
			return nil, err
		}
		c.cache.Put(key, factory)
		return factory, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*LookupSourceFactory), nil
}

func (c *JoinCompiler) internalCompileLookupSourceFactory(typs []types.Type, joinChannels []int) (*LookupSourceFactory, error) {
	strategyFactory, err := c.CompilePagesHashStrategyFactory(typs, joinChannels)
	if err != nil {
		return nil, err
	}
	return &LookupSourceFactory{
		typs:            append([]types.Type{}, typs...),
		joinChannels:    append([]int{}, joinChannels...),
		strategyFactory: strategyFactory,
	}, nil
}

// CompilePagesHashStrategyFactory specializes a kernel for one shape. Not
// memoized; callers wanting the cache go through CompileLookupSourceFactory.
func (c *JoinCompiler) CompilePagesHashStrategyFactory(typs []types.Type, joinChannels []int) (*PagesHashStrategyFactory, error) {
	if len(typs) == 0 {
		return nil, perr.NewInvalidShape("empty type vector")
	}
	ops := make([]typeOps, len(typs))
	for i, typ := range typs {
		o, ok := opsForType(typ.Oid)
		if !ok {
			return nil, perr.NewUnsupportedType("channel %d: type %s has no hash/equality capabilities", i, typ)
		}
		ops[i] = o
	}
	joinOps := make([]typeOps, len(joinChannels))
	for k, channel := range joinChannels {
		if channel < 0 || channel >= len(typs) {
			return nil, perr.NewInvalidShape("join channel %d out of range, %d channels", channel, len(typs))
		}
		joinOps[k] = ops[channel]
	}

	factory := c.selectKernel(typs, joinChannels, ops, joinOps)
	c.compileCount.Add(1)

	if c.cfg.VerifyKernels {
		if err := verifyFactory(factory, len(typs)); err != nil {
			return nil, err
		}
	}
	c.dumpKernel(typs, joinChannels, factory.kernel)
	return factory, nil
}

// selectKernel picks the monomorphic hot path when the shape has one, the
// vtable kernel otherwise. Deterministic for a given shape.
func (c *JoinCompiler) selectKernel(typs []types.Type, joinChannels []int, ops, joinOps []typeOps) *PagesHashStrategyFactory {
	baseOf := func(channels [][]*vector.Vector) strategyBase {
		return strategyBase{channels: channels, ops: ops}
	}

	if len(joinChannels) == 1 {
		channel := joinChannels[0]
		oid := typs[channel].Oid
		if ctor, ok := fixedKernels[oid]; ok {
			return &PagesHashStrategyFactory{
				kernel: fmt.Sprintf("fixed[%s]", oid),
				create: func(channels [][]*vector.Vector) operator.PagesHashStrategy {
					return ctor(baseOf(channels), channel)
				},
			}
		}
		if oid == types.T_char || oid == types.T_varchar {
			return &PagesHashStrategyFactory{
				kernel: "bytes",
				create: func(channels [][]*vector.Vector) operator.PagesHashStrategy {
					return newBytesKeyStrategy(baseOf(channels), channel)
				},
			}
		}
	}

	joinChannelIndices := append([]int{}, joinChannels...)
	return &PagesHashStrategyFactory{
		kernel: "vtable",
		create: func(channels [][]*vector.Vector) operator.PagesHashStrategy {
			return newVtableStrategy(baseOf(channels), joinChannelIndices, joinOps)
		},
	}
}

// verifyFactory drives a fresh kernel over an empty build side. Anything
// wrong with the binding surfaces here instead of at probe time.
func verifyFactory(factory *PagesHashStrategyFactory, channelCount int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = perr.NewCompilation(fmt.Errorf("%v", r), "kernel %s failed verification", factory.kernel)
		}
	}()
	strategy := factory.CreatePagesHashStrategy(make([][]*vector.Vector, channelCount))
	if got := strategy.ChannelCount(); got != channelCount {
		return perr.NewCompilation(nil, "kernel %s reports %d channels, shape has %d", factory.kernel, got, channelCount)
	}
	return nil
}

func (c *JoinCompiler) dumpKernel(typs []types.Type, joinChannels []int, kernel string) {
	if !c.cfg.DumpKernelSelection && c.cfg.DumpKernelTo == "" {
		return
	}
	shape := shapeKey(typs, joinChannels)
	if c.cfg.DumpKernelSelection {
		logutil.Info("compiled join kernel",
			zap.String("shape", shape),
			zap.String("kernel", kernel))
	}
	if c.cfg.DumpKernelTo != "" {
		c.dumpMu.Lock()
		defer c.dumpMu.Unlock()
		f, err := os.OpenFile(c.cfg.DumpKernelTo, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logutil.Warn("cannot dump kernel selection", zap.Error(err))
			return
		}
		defer f.Close()
		fmt.Fprintf(f, "%s => %s\n", shape, kernel)
	}
}

// CachedFactoryCount is the number of memoized shapes.
func (c *JoinCompiler) CachedFactoryCount() int {
	return c.cache.Len()
}

// shapeKey is the value-equality cache key of (type vector, join channels).
func shapeKey(typs []types.Type, joinChannels []int) string {
	var sb strings.Builder
	for i, typ := range typs {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d.%d.%d", typ.Oid, typ.Width, typ.Scale)
	}
	sb.WriteByte('|')
	for k, channel := range joinChannels {
		if k > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", channel)
	}
	return sb.String()
}
