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
	"github.com/zirpins/presto/pkg/container/batch"
	"github.com/zirpins/presto/pkg/container/vector"
)

// PagesHashStrategy computes row hashes and join-key equality over the
// batches of one build side. A strategy is bound to a fixed type vector and a
// fixed join-channel list; implementations are produced by the join compiler
// and are safe for concurrent read once constructed.
//
// The hash combines join channels in declared order as result*31 + h where a
// NULL contributes 0. Equality treats two NULLs as equal and NULL-vs-value as
// unequal; this is join-key equality, not SQL three-valued equality.
type PagesHashStrategy interface {
	// ChannelCount is the width of the type vector.
	ChannelCount() int

	// AppendTo writes every channel of the row at (batchIndex, position)
	// into the output batch starting at outputChannelOffset.
	AppendTo(batchIndex, position int, out *batch.Batch, outputChannelOffset int)

	// HashPosition hashes the join-key tuple of a build-side row.
	HashPosition(batchIndex, position int) int32

	// HashRow hashes a probe-side row laid out as one vector per join
	// channel, in join-channel order.
	HashRow(position int, vecs []*vector.Vector) int32

	// PositionEqualsRow compares a build-side row with a probe-side row.
	PositionEqualsRow(leftBatchIndex, leftPosition, rightPosition int, rightVecs []*vector.Vector) bool

	// PositionEqualsPosition compares two build-side rows.
	PositionEqualsPosition(leftBatchIndex, leftPosition, rightBatchIndex, rightPosition int) bool
}

// LookupSource answers join probes against a frozen build side. Probing is
// total: misses return NotFound, never an error. Concurrent read-only probing
// requires no locking.
type LookupSource interface {
	ChannelCount() int

	RowCount() int

	// GetJoinPosition finds the first build-side row equal to the probe
	// row, hashing the probe row itself.
	GetJoinPosition(position int, vecs []*vector.Vector) uint64

	// GetJoinPositionWithHash is GetJoinPosition with a caller-supplied
	// row hash, for probes that batch-compute hashes up front.
	GetJoinPositionWithHash(position int, vecs []*vector.Vector, rawHash int32) uint64

	// GetNextJoinPosition continues a multi-match enumeration. The probe
	// row is carried so equality can be re-tested on every candidate.
	GetNextJoinPosition(currentJoinPosition uint64, position int, vecs []*vector.Vector) uint64

	// AppendTo emits the build-side row behind joinPosition into the
	// output batch.
	AppendTo(joinPosition uint64, out *batch.Batch, outputChannelOffset int)

	// RetainedSizeInBytes is the memory held by the bucket array and the
	// address list.
	RetainedSizeInBytes() int64
}
