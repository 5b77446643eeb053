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

// join-bench builds a synthetic build side, compiles a join kernel for it,
// and probes the resulting lookup source from a worker pool.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/zirpins/presto/pkg/config"
	"github.com/zirpins/presto/pkg/container/batch"
	"github.com/zirpins/presto/pkg/container/types"
	"github.com/zirpins/presto/pkg/container/vector"
	"github.com/zirpins/presto/pkg/logutil"
	"github.com/zirpins/presto/pkg/operator"
	"github.com/zirpins/presto/pkg/sql/gen"
)

var (
	configFile   = flag.String("config", "", "TOML config file")
	buildRows    = flag.Int("rows", 1_000_000, "build-side row count")
	rowsPerBatch = flag.Int("rows-per-batch", 8192, "rows per build batch")
	distinctKeys = flag.Int("distinct", 100_000, "distinct join keys")
	probeRows    = flag.Int("probe", 1_000_000, "probe row count")
	workers      = flag.Int("workers", runtime.NumCPU(), "probe workers")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	logutil.Setup(cfg.Log)

	typs := []types.Type{types.T_int64.ToType(), types.T_varchar.ToType()}
	joinChannels := []int{0}

	index, err := operator.NewPagesIndex(typs, joinChannels)
	if err != nil {
		logutil.Fatal("create pages index", zap.Error(err))
	}
	for offset := 0; offset < *buildRows; offset += *rowsPerBatch {
		n := *rowsPerBatch
		if offset+n > *buildRows {
			n = *buildRows - offset
		}
		if err := index.AddBatch(buildBatch(typs, offset, n, *distinctKeys)); err != nil {
			logutil.Fatal("add batch", zap.Error(err))
		}
	}
	logutil.Info("build side ready",
		zap.Int("rows", index.PositionCount()),
		zap.Uint64("estimatedDistinctKeys", index.EstimatedDistinctKeys()),
		zap.String("size", humanize.IBytes(uint64(index.EstimatedSize()))))

	compiler := gen.NewJoinCompiler(cfg.Join)
	factory, err := compiler.CompileLookupSourceFactory(typs, joinChannels)
	if err != nil {
		logutil.Fatal("compile lookup source factory", zap.Error(err))
	}
	logutil.Info("kernel compiled", zap.String("kernel", factory.StrategyFactory().Kernel()))

	opCtx := operator.NewContext(logutil.GetGlobalLogger())
	start := time.Now()
	source, err := factory.CreateLookupSourceFromIndex(index, opCtx)
	if err != nil {
		logutil.Fatal("create lookup source", zap.Error(err))
	}
	logutil.Info("lookup source built",
		zap.Duration("elapsed", time.Since(start)),
		zap.String("retained", humanize.IBytes(uint64(source.RetainedSizeInBytes()))))

	probeKeys := vector.New(types.T_int64.ToType())
	for i := 0; i < *probeRows; i++ {
		vector.AppendFixed(probeKeys, int64(i%(*distinctKeys*2)), false)
	}
	probeVecs := []*vector.Vector{probeKeys}

	pool, err := ants.NewPool(*workers)
	if err != nil {
		logutil.Fatal("create probe pool", zap.Error(err))
	}
	defer pool.Release()

	var matches atomic.Int64
	var wg sync.WaitGroup
	chunk := (*probeRows + *workers - 1) / *workers
	start = time.Now()
	for lo := 0; lo < *probeRows; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > *probeRows {
			hi = *probeRows
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			var found int64
			for position := lo; position < hi; position++ {
				joinPosition := source.GetJoinPosition(position, probeVecs)
				for joinPosition != operator.NotFound {
					found++
					joinPosition = source.GetNextJoinPosition(joinPosition, position, probeVecs)
				}
			}
			matches.Add(found)
		}); err != nil {
			wg.Done()
			logutil.Error("submit probe task", zap.Error(err))
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	logutil.Info("probe finished",
		zap.Int("probeRows", *probeRows),
		zap.Int64("matches", matches.Load()),
		zap.Duration("elapsed", elapsed),
		zap.Float64("rowsPerSecond", float64(*probeRows)/elapsed.Seconds()))
}

func buildBatch(typs []types.Type, offset, n, distinct int) *batch.Batch {
	bat := batch.New(typs)
	for i := 0; i < n; i++ {
		key := int64((offset + i) % distinct)
		vector.AppendFixed(bat.Vecs[0], key, false)
		vector.AppendBytes(bat.Vecs[1], []byte(fmt.Sprintf("payload-%d", offset+i)), false)
	}
	bat.SetRowCount(n)
	return bat
}
