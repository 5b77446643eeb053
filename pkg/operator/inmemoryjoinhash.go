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
	"go.uber.org/zap"

	"github.com/zirpins/presto/pkg/common/perr"
	"github.com/zirpins/presto/pkg/container/batch"
	"github.com/zirpins/presto/pkg/container/vector"
)

const (
	kInitialBucketCntBits = 10
	kInitialBucketCnt     = 1 << kInitialBucketCntBits
	kMaxBucketCntBits     = 48

	kLoadFactorNumerator   = 3
	kLoadFactorDenominator = 4
)

// InMemoryJoinHash indexes build-side rows by their join key: an
// open-addressed power-of-two table whose entries are synthetic addresses.
// Buckets are allocated once at build, the table never rehashes, and after
// build it is frozen and probed concurrently without locks.
//
// Duplicate keys lie on one linear-probe sequence, possibly with other keys
// between them, so multi-match enumeration continues the linear probe from
// the previous hit, re-testing equality on every candidate. Matches come back in build append order.
type InMemoryJoinHash struct {
	addresses []uint64
	strategy  PagesHashStrategy

	mask uint64
	key  []uint64

	retainedBytes int64
}

func NewInMemoryJoinHash(addresses []uint64, strategy PagesHashStrategy, opCtx *Context) (*InMemoryJoinHash, error) {
	bucketCntBits, err := bucketCountBits(len(addresses))
	if err != nil {
		return nil, err
	}
	bucketCnt := uint64(1) << bucketCntBits

	jh := &InMemoryJoinHash{
		addresses: addresses,
		strategy:  strategy,
		mask:      bucketCnt - 1,
		key:       make([]uint64, bucketCnt),
	}
	for i := range jh.key {
		jh.key[i] = NotFound
	}

	for _, address := range addresses {
		batchIndex := DecodeBatchIndex(address)
		position := DecodePosition(address)
		slot := jh.slotOf(strategy.HashPosition(batchIndex, position))
		for jh.key[slot] != NotFound {
			slot = (slot + 1) & jh.mask
		}
		jh.key[slot] = address
	}

	jh.retainedBytes = int64(len(jh.key))*8 + int64(len(jh.addresses))*8
	if opCtx != nil {
		opCtx.ReserveMemory(jh.retainedBytes)
		opCtx.Logger().Debug("join hash built",
			zap.Int("rows", len(addresses)),
			zap.Uint64("buckets", bucketCnt),
			zap.String("reserved", opCtx.ReservedString()))
	}
	return jh, nil
}

// bucketCountBits sizes the table for n addresses: the smallest power of two
// of at least kInitialBucketCnt keeping the load factor at or under 3/4.
func bucketCountBits(n int) (uint64, error) {
	bits := uint64(kInitialBucketCntBits)
	maxElemCnt := uint64(kInitialBucketCnt) * kLoadFactorNumerator / kLoadFactorDenominator
	for maxElemCnt < uint64(n) {
		bits++
		if bits > kMaxBucketCntBits {
			return 0, perr.NewCapacity("join hash cannot index %d rows", n)
		}
		maxElemCnt = (uint64(1) << bits) * kLoadFactorNumerator / kLoadFactorDenominator
	}
	return bits, nil
}

func (jh *InMemoryJoinHash) slotOf(rawHash int32) uint64 {
	return uint64(uint32(rawHash)) & jh.mask
}

func (jh *InMemoryJoinHash) ChannelCount() int {
	return jh.strategy.ChannelCount()
}

func (jh *InMemoryJoinHash) RowCount() int {
	return len(jh.addresses)
}

func (jh *InMemoryJoinHash) GetJoinPosition(position int, vecs []*vector.Vector) uint64 {
	return jh.GetJoinPositionWithHash(position, vecs, jh.strategy.HashRow(position, vecs))
}

func (jh *InMemoryJoinHash) GetJoinPositionWithHash(position int, vecs []*vector.Vector, rawHash int32) uint64 {
	slot := jh.slotOf(rawHash)
	for {
		address := jh.key[slot]
		if address == NotFound {
			return NotFound
		}
		if jh.strategy.PositionEqualsRow(DecodeBatchIndex(address), DecodePosition(address), position, vecs) {
			return address
		}
		slot = (slot + 1) & jh.mask
	}
}

func (jh *InMemoryJoinHash) GetNextJoinPosition(currentJoinPosition uint64, position int, vecs []*vector.Vector) uint64 {
	slot := jh.slotOf(jh.strategy.HashRow(position, vecs))
	for jh.key[slot] != currentJoinPosition {
		if jh.key[slot] == NotFound {
			return NotFound
		}
		slot = (slot + 1) & jh.mask
	}
	for {
		slot = (slot + 1) & jh.mask
		address := jh.key[slot]
		if address == NotFound {
			return NotFound
		}
		if jh.strategy.PositionEqualsRow(DecodeBatchIndex(address), DecodePosition(address), position, vecs) {
			return address
		}
	}
}

func (jh *InMemoryJoinHash) AppendTo(joinPosition uint64, out *batch.Batch, outputChannelOffset int) {
	jh.strategy.AppendTo(DecodeBatchIndex(joinPosition), DecodePosition(joinPosition), out, outputChannelOffset)
}

func (jh *InMemoryJoinHash) RetainedSizeInBytes() int64 {
	return jh.retainedBytes
}
