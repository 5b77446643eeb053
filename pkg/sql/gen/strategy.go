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
	"github.com/zirpins/presto/pkg/container/batch"
	"github.com/zirpins/presto/pkg/container/vector"
)

// strategyBase carries what every kernel shares: the full channel lists and
// the per-channel append capability. Embedded by each kernel so AppendTo and
// ChannelCount behave identically regardless of the hash path.
type strategyBase struct {
	channels [][]*vector.Vector // [channel][batch]
	ops      []typeOps          // per channel
}

func (s *strategyBase) ChannelCount() int {
	return len(s.channels)
}

func (s *strategyBase) AppendTo(batchIndex, position int, out *batch.Batch, outputChannelOffset int) {
	for i := range s.channels {
		s.ops[i].appendTo(out.GetVector(outputChannelOffset+i), s.channels[i][batchIndex], position)
	}
}

// vtablePagesHashStrategy is the cold-path kernel: every shape, every width,
// dispatched through the per-channel capability records.
type vtablePagesHashStrategy struct {
	strategyBase

	joinChannels [][]*vector.Vector // [k][batch], aliases channels
	joinOps      []typeOps
}

func newVtableStrategy(base strategyBase, joinChannelIndices []int, joinOps []typeOps) *vtablePagesHashStrategy {
	joinChannels := make([][]*vector.Vector, len(joinChannelIndices))
	for k, c := range joinChannelIndices {
		joinChannels[k] = base.channels[c]
	}
	return &vtablePagesHashStrategy{
		strategyBase: base,
		joinChannels: joinChannels,
		joinOps:      joinOps,
	}
}

func (s *vtablePagesHashStrategy) HashPosition(batchIndex, position int) int32 {
	var result int32
	for k := range s.joinChannels {
		result = result*31 + channelHash(s.joinOps[k], s.joinChannels[k][batchIndex], position)
	}
	return result
}

func (s *vtablePagesHashStrategy) HashRow(position int, vecs []*vector.Vector) int32 {
	var result int32
	for k := range s.joinOps {
		result = result*31 + channelHash(s.joinOps[k], vecs[k], position)
	}
	return result
}

func (s *vtablePagesHashStrategy) PositionEqualsRow(leftBatchIndex, leftPosition, rightPosition int, rightVecs []*vector.Vector) bool {
	for k := range s.joinOps {
		if !channelEquals(s.joinOps[k], s.joinChannels[k][leftBatchIndex], leftPosition, rightVecs[k], rightPosition) {
			return false
		}
	}
	return true
}

func (s *vtablePagesHashStrategy) PositionEqualsPosition(leftBatchIndex, leftPosition, rightBatchIndex, rightPosition int) bool {
	for k := range s.joinChannels {
		left := s.joinChannels[k][leftBatchIndex]
		right := s.joinChannels[k][rightBatchIndex]
		if !channelEquals(s.joinOps[k], left, leftPosition, right, rightPosition) {
			return false
		}
	}
	return true
}
