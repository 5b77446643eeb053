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
	"github.com/zirpins/presto/pkg/container/nulls"
	"github.com/zirpins/presto/pkg/container/types"
	"github.com/zirpins/presto/pkg/container/vector"
	"github.com/zirpins/presto/pkg/operator"
)

// fixedKeyStrategy is the hot-path kernel for a single fixed-width join key:
// the key column of every batch is pinned as a typed slice up front, so the
// per-row hash and equality paths run without any dynamic dispatch.
type fixedKeyStrategy[T fixedKeyT] struct {
	strategyBase

	cols [][]T
	nsps []*nulls.Nulls
	hash func(T) int32
}

func newFixedKeyStrategy[T fixedKeyT](hash func(T) int32) func(base strategyBase, joinChannel int) operator.PagesHashStrategy {
	return func(base strategyBase, joinChannel int) operator.PagesHashStrategy {
		vecs := base.channels[joinChannel]
		s := &fixedKeyStrategy[T]{
			strategyBase: base,
			cols:         make([][]T, len(vecs)),
			nsps:         make([]*nulls.Nulls, len(vecs)),
			hash:         hash,
		}
		for i, vec := range vecs {
			s.cols[i] = vector.MustFixedCol[T](vec)
			s.nsps[i] = vec.Nsp
		}
		return s
	}
}

func (s *fixedKeyStrategy[T]) HashPosition(batchIndex, position int) int32 {
	if nulls.Contains(s.nsps[batchIndex], uint64(position)) {
		return 0
	}
	return s.hash(s.cols[batchIndex][position])
}

func (s *fixedKeyStrategy[T]) HashRow(position int, vecs []*vector.Vector) int32 {
	vec := vecs[0]
	if vec.IsNull(position) {
		return 0
	}
	return s.hash(vector.MustFixedCol[T](vec)[position])
}

func (s *fixedKeyStrategy[T]) PositionEqualsRow(leftBatchIndex, leftPosition, rightPosition int, rightVecs []*vector.Vector) bool {
	right := rightVecs[0]
	leftNull := nulls.Contains(s.nsps[leftBatchIndex], uint64(leftPosition))
	rightNull := right.IsNull(rightPosition)
	if leftNull || rightNull {
		return leftNull && rightNull
	}
	return s.cols[leftBatchIndex][leftPosition] == vector.MustFixedCol[T](right)[rightPosition]
}

func (s *fixedKeyStrategy[T]) PositionEqualsPosition(leftBatchIndex, leftPosition, rightBatchIndex, rightPosition int) bool {
	leftNull := nulls.Contains(s.nsps[leftBatchIndex], uint64(leftPosition))
	rightNull := nulls.Contains(s.nsps[rightBatchIndex], uint64(rightPosition))
	if leftNull || rightNull {
		return leftNull && rightNull
	}
	return s.cols[leftBatchIndex][leftPosition] == s.cols[rightBatchIndex][rightPosition]
}

// fixedKernels maps a fixed-width key type to its monomorphic constructor.
// Shapes outside the map fall back to the vtable kernel.
var fixedKernels = map[types.T]func(base strategyBase, joinChannel int) operator.PagesHashStrategy{
	types.T_bool:     newFixedKeyStrategy[bool](hashFixed[bool]),
	types.T_int8:     newFixedKeyStrategy[int8](hashFixed[int8]),
	types.T_int16:    newFixedKeyStrategy[int16](hashFixed[int16]),
	types.T_int32:    newFixedKeyStrategy[int32](hashFixed[int32]),
	types.T_int64:    newFixedKeyStrategy[int64](hashFixed[int64]),
	types.T_uint8:    newFixedKeyStrategy[uint8](hashFixed[uint8]),
	types.T_uint16:   newFixedKeyStrategy[uint16](hashFixed[uint16]),
	types.T_uint32:   newFixedKeyStrategy[uint32](hashFixed[uint32]),
	types.T_uint64:   newFixedKeyStrategy[uint64](hashFixed[uint64]),
	types.T_float32:  newFixedKeyStrategy[float32](hashFloat32),
	types.T_float64:  newFixedKeyStrategy[float64](hashFloat64),
	types.T_date:     newFixedKeyStrategy[types.Date](hashFixed[types.Date]),
	types.T_datetime: newFixedKeyStrategy[types.Datetime](hashFixed[types.Datetime]),
}
