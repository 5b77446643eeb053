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
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zirpins/presto/pkg/common/perr"
	"github.com/zirpins/presto/pkg/container/batch"
	"github.com/zirpins/presto/pkg/container/types"
	"github.com/zirpins/presto/pkg/container/vector"
)

func intBatch(vals []int64, nullRows ...uint64) *batch.Batch {
	bat := batch.New([]types.Type{types.T_int64.ToType()})
	nulls := make(map[uint64]bool)
	for _, row := range nullRows {
		nulls[row] = true
	}
	for i, v := range vals {
		vector.AppendFixed(bat.Vecs[0], v, nulls[uint64(i)])
	}
	bat.SetRowCount(len(vals))
	return bat
}

func TestNewPagesIndexValidation(t *testing.T) {
	_, err := NewPagesIndex(nil, nil)
	require.Equal(t, perr.ErrInvalidShape, perr.Code(err))

	_, err = NewPagesIndex([]types.Type{types.T_int64.ToType()}, []int{1})
	require.Equal(t, perr.ErrInvalidShape, perr.Code(err))

	_, err = NewPagesIndex([]types.Type{types.T_int64.ToType()}, []int{-1})
	require.Equal(t, perr.ErrInvalidShape, perr.Code(err))
}

func TestAddBatchValidation(t *testing.T) {
	index, err := NewPagesIndex([]types.Type{types.T_int64.ToType(), types.T_varchar.ToType()}, []int{0})
	require.NoError(t, err)

	err = index.AddBatch(intBatch([]int64{1}))
	require.Equal(t, perr.ErrInvalidShape, perr.Code(err))

	bad := batch.New([]types.Type{types.T_int32.ToType(), types.T_varchar.ToType()})
	err = index.AddBatch(bad)
	require.Equal(t, perr.ErrInvalidShape, perr.Code(err))
}

func TestAddressesFollowAppendOrder(t *testing.T) {
	index, err := NewPagesIndex([]types.Type{types.T_int64.ToType()}, []int{0})
	require.NoError(t, err)
	require.NoError(t, index.AddBatch(intBatch([]int64{10, 11})))
	require.NoError(t, index.AddBatch(intBatch([]int64{12})))

	require.Equal(t, []uint64{
		EncodeSyntheticAddress(0, 0),
		EncodeSyntheticAddress(0, 1),
		EncodeSyntheticAddress(1, 0),
	}, index.Addresses())
	require.Equal(t, 3, index.PositionCount())
	require.Len(t, index.Channels()[0], 2)
}

func TestEstimatedDistinctKeys(t *testing.T) {
	index, err := NewPagesIndex([]types.Type{types.T_int64.ToType()}, []int{0})
	require.NoError(t, err)
	vals := make([]int64, 1000)
	for i := range vals {
		vals[i] = int64(i % 10)
	}
	require.NoError(t, index.AddBatch(intBatch(vals)))

	estimate := index.EstimatedDistinctKeys()
	require.GreaterOrEqual(t, estimate, uint64(8))
	require.LessOrEqual(t, estimate, uint64(12))
}

func TestNullKeyCountsAsItsOwnValue(t *testing.T) {
	index, err := NewPagesIndex([]types.Type{types.T_int64.ToType()}, []int{0})
	require.NoError(t, err)
	require.NoError(t, index.AddBatch(intBatch([]int64{1, 0}, 1)))

	require.Equal(t, uint64(2), index.EstimatedDistinctKeys())
}

func TestVarlenKeysDoNotAlias(t *testing.T) {
	index, err := NewPagesIndex(
		[]types.Type{types.T_varchar.ToType(), types.T_varchar.ToType()}, []int{0, 1})
	require.NoError(t, err)

	bat := batch.New([]types.Type{types.T_varchar.ToType(), types.T_varchar.ToType()})
	vector.AppendBytes(bat.Vecs[0], []byte("ab"), false)
	vector.AppendBytes(bat.Vecs[1], []byte("c"), false)
	vector.AppendBytes(bat.Vecs[0], []byte("a"), false)
	vector.AppendBytes(bat.Vecs[1], []byte("bc"), false)
	bat.SetRowCount(2)
	require.NoError(t, index.AddBatch(bat))

	require.Equal(t, uint64(2), index.EstimatedDistinctKeys())
}

func TestEstimatedSizeGrows(t *testing.T) {
	index, err := NewPagesIndex([]types.Type{types.T_int64.ToType()}, []int{0})
	require.NoError(t, err)
	require.Equal(t, int64(0), index.EstimatedSize())

	require.NoError(t, index.AddBatch(intBatch([]int64{1, 2, 3})))
	require.Equal(t, int64(3*8+3*8), index.EstimatedSize())
}

func TestNoJoinChannels(t *testing.T) {
	index, err := NewPagesIndex([]types.Type{types.T_int64.ToType()}, nil)
	require.NoError(t, err)
	require.NoError(t, index.AddBatch(intBatch([]int64{1, 2})))
	require.Equal(t, uint64(0), index.EstimatedDistinctKeys())
}

func BenchmarkAddBatch(b *testing.B) {
	typs := []types.Type{types.T_int64.ToType(), types.T_varchar.ToType()}
	bat := batch.New(typs)
	for i := 0; i < 8192; i++ {
		vector.AppendFixed(bat.Vecs[0], int64(i), false)
		vector.AppendBytes(bat.Vecs[1], []byte(fmt.Sprintf("v-%d", i)), false)
	}
	bat.SetRowCount(8192)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		index, _ := NewPagesIndex(typs, []int{0})
		_ = index.AddBatch(bat)
	}
}
