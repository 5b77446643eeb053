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
	"bytes"

	"github.com/zirpins/presto/pkg/container/nulls"
	"github.com/zirpins/presto/pkg/container/types"
	"github.com/zirpins/presto/pkg/container/vector"
	"github.com/zirpins/presto/pkg/operator"
)

// bytesKeyStrategy is the hot-path kernel for a single varlen join key.
type bytesKeyStrategy struct {
	strategyBase

	cols []*types.Bytes
	nsps []*nulls.Nulls
}

func newBytesKeyStrategy(base strategyBase, joinChannel int) operator.PagesHashStrategy {
	vecs := base.channels[joinChannel]
	s := &bytesKeyStrategy{
		strategyBase: base,
		cols:         make([]*types.Bytes, len(vecs)),
		nsps:         make([]*nulls.Nulls, len(vecs)),
	}
	for i, vec := range vecs {
		s.cols[i] = vector.MustBytesCol(vec)
		s.nsps[i] = vec.Nsp
	}
	return s
}

func (s *bytesKeyStrategy) HashPosition(batchIndex, position int) int32 {
	if nulls.Contains(s.nsps[batchIndex], uint64(position)) {
		return 0
	}
	return hashBytes(s.cols[batchIndex].Get(int64(position)))
}

func (s *bytesKeyStrategy) HashRow(position int, vecs []*vector.Vector) int32 {
	vec := vecs[0]
	if vec.IsNull(position) {
		return 0
	}
	return hashBytes(vec.GetBytes(int64(position)))
}

func (s *bytesKeyStrategy) PositionEqualsRow(leftBatchIndex, leftPosition, rightPosition int, rightVecs []*vector.Vector) bool {
	right := rightVecs[0]
	leftNull := nulls.Contains(s.nsps[leftBatchIndex], uint64(leftPosition))
	rightNull := right.IsNull(rightPosition)
	if leftNull || rightNull {
		return leftNull && rightNull
	}
	return bytes.Equal(s.cols[leftBatchIndex].Get(int64(leftPosition)), right.GetBytes(int64(rightPosition)))
}

func (s *bytesKeyStrategy) PositionEqualsPosition(leftBatchIndex, leftPosition, rightBatchIndex, rightPosition int) bool {
	leftNull := nulls.Contains(s.nsps[leftBatchIndex], uint64(leftPosition))
	rightNull := nulls.Contains(s.nsps[rightBatchIndex], uint64(rightPosition))
	if leftNull || rightNull {
		return leftNull && rightNull
	}
	return bytes.Equal(s.cols[leftBatchIndex].Get(int64(leftPosition)), s.cols[rightBatchIndex].Get(int64(rightPosition)))
}
