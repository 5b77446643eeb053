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

package gen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zirpins/presto/pkg/config"
	"github.com/zirpins/presto/pkg/container/types"
)

func shapeOf(oids ...types.T) []types.Type {
	typs := make([]types.Type, len(oids))
	for i, oid := range oids {
		typs[i] = oid.ToType()
	}
	return typs
}

func TestCacheReturnsSameFactory(t *testing.T) {
	compiler := newCompiler()

	first, err := compiler.CompileLookupSourceFactory(shapeOf(types.T_int64), []int{0})
	require.NoError(t, err)
	second, err := compiler.CompileLookupSourceFactory(shapeOf(types.T_int64), []int{0})
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, int64(1), compiler.compileCount.Load())
}

func TestCacheKeyIsValueEquality(t *testing.T) {
	compiler := newCompiler()

	_, err := compiler.CompileLookupSourceFactory(shapeOf(types.T_int64, types.T_int32), []int{0})
	require.NoError(t, err)
	_, err = compiler.CompileLookupSourceFactory(shapeOf(types.T_int64, types.T_int32), []int{1})
	require.NoError(t, err)
	_, err = compiler.CompileLookupSourceFactory(shapeOf(types.T_int64, types.T_int32), []int{0})
	require.NoError(t, err)
	require.Equal(t, int64(2), compiler.compileCount.Load())
	require.Equal(t, 2, compiler.CachedFactoryCount())
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cfg := config.Default().Join
	cfg.SpecializationCacheCapacity = 2
	compiler := NewJoinCompiler(cfg)

	intShape := shapeOf(types.T_int64)
	floatShape := shapeOf(types.T_float64)
	bytesShape := shapeOf(types.T_varchar)

	_, err := compiler.CompileLookupSourceFactory(intShape, []int{0})
	require.NoError(t, err)
	_, err = compiler.CompileLookupSourceFactory(floatShape, []int{0})
	require.NoError(t, err)

	// touch the int shape so the float shape is the eviction victim
	_, err = compiler.CompileLookupSourceFactory(intShape, []int{0})
	require.NoError(t, err)
	_, err = compiler.CompileLookupSourceFactory(bytesShape, []int{0})
	require.NoError(t, err)
	require.Equal(t, 2, compiler.CachedFactoryCount())

	_, err = compiler.CompileLookupSourceFactory(intShape, []int{0})
	require.NoError(t, err)
	require.Equal(t, int64(3), compiler.compileCount.Load())

	_, err = compiler.CompileLookupSourceFactory(floatShape, []int{0})
	require.NoError(t, err)
	require.Equal(t, int64(4), compiler.compileCount.Load())
}

// Concurrent misses for one shape observe exactly one compilation.
func TestSingleFlightCompilation(t *testing.T) {
	compiler := newCompiler()
	typs := shapeOf(types.T_int64, types.T_varchar)

	var wg sync.WaitGroup
	start := make(chan struct{})
	factories := make([]*LookupSourceFactory, 64)
	errs := make([]error, 64)
	for i := range factories {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			factories[i], errs[i] = compiler.CompileLookupSourceFactory(typs, []int{0, 1})
		}()
	}
	close(start)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), compiler.compileCount.Load())
	for _, factory := range factories {
		require.Same(t, factories[0], factory)
	}
}

func TestShapeKeyDistinguishesWidth(t *testing.T) {
	narrow := []types.Type{types.New(types.T_char, 10, 0)}
	wide := []types.Type{types.New(types.T_char, 20, 0)}
	require.NotEqual(t, shapeKey(narrow, []int{0}), shapeKey(wide, []int{0}))
	require.Equal(t, shapeKey(narrow, []int{0}), shapeKey(narrow, []int{0}))
}
