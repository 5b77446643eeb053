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
	"encoding/binary"
	"math"

	hll "github.com/axiomhq/hyperloglog"

	"github.com/zirpins/presto/pkg/common/perr"
	"github.com/zirpins/presto/pkg/container/batch"
	"github.com/zirpins/presto/pkg/container/types"
	"github.com/zirpins/presto/pkg/container/vector"
)

// PagesIndex accumulates the build side of a join: one vector list per
// channel, a synthetic address per row, and a distinct-key sketch over the
// join-key tuples. It borrows the appended vectors; batches must stay
// immutable while the index lives.
type PagesIndex struct {
	typs         []types.Type
	joinChannels []int

	channels  [][]*vector.Vector
	addresses []uint64

	positionCount int
	sketch        *hll.Sketch
	keyScratch    []byte
}

func NewPagesIndex(typs []types.Type, joinChannels []int) (*PagesIndex, error) {
	if len(typs) == 0 {
		return nil, perr.NewInvalidShape("empty type vector")
	}
	for _, c := range joinChannels {
		if c < 0 || c >= len(typs) {
			return nil, perr.NewInvalidShape("join channel %d out of range, %d channels", c, len(typs))
		}
	}
	return &PagesIndex{
		typs:         typs,
		joinChannels: append([]int{}, joinChannels...),
		channels:     make([][]*vector.Vector, len(typs)),
		sketch:       hll.New14(),
	}, nil
}

func (p *PagesIndex) AddBatch(bat *batch.Batch) error {
	if bat.ChannelCount() != len(p.typs) {
		return perr.NewInvalidShape("batch has %d channels, index has %d", bat.ChannelCount(), len(p.typs))
	}
	for i, vec := range bat.Vecs {
		if vec.Typ.Oid != p.typs[i].Oid {
			return perr.NewInvalidShape("channel %d is %s, index wants %s", i, vec.Typ, p.typs[i])
		}
	}

	batchIndex := len(p.channels[0])
	for i, vec := range bat.Vecs {
		p.channels[i] = append(p.channels[i], vec)
	}
	for position := 0; position < bat.RowCount(); position++ {
		p.addresses = append(p.addresses, EncodeSyntheticAddress(batchIndex, position))
		p.observeKey(bat, position)
	}
	p.positionCount += bat.RowCount()
	return nil
}

// observeKey feeds the row's join-key tuple into the distinct-key sketch.
// A marker byte per channel keeps NULL distinct from every value, and varlen
// values carry their length so adjacent keys cannot alias.
func (p *PagesIndex) observeKey(bat *batch.Batch, position int) {
	if len(p.joinChannels) == 0 {
		return
	}
	buf := p.keyScratch[:0]
	for _, c := range p.joinChannels {
		vec := bat.Vecs[c]
		if vec.IsNull(position) {
			buf = append(buf, 0xff)
			continue
		}
		buf = append(buf, 0x00)
		buf = appendValueBytes(buf, vec, position)
	}
	p.sketch.Insert(buf)
	p.keyScratch = buf
}

func appendValueBytes(buf []byte, vec *vector.Vector, position int) []byte {
	switch col := vec.Col.(type) {
	case []bool:
		if col[position] {
			return append(buf, 1)
		}
		return append(buf, 0)
	case []int8:
		return append(buf, byte(col[position]))
	case []int16:
		return binary.LittleEndian.AppendUint16(buf, uint16(col[position]))
	case []int32:
		return binary.LittleEndian.AppendUint32(buf, uint32(col[position]))
	case []int64:
		return binary.LittleEndian.AppendUint64(buf, uint64(col[position]))
	case []uint8:
		return append(buf, col[position])
	case []uint16:
		return binary.LittleEndian.AppendUint16(buf, col[position])
	case []uint32:
		return binary.LittleEndian.AppendUint32(buf, col[position])
	case []uint64:
		return binary.LittleEndian.AppendUint64(buf, col[position])
	case []float32:
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(col[position]))
	case []float64:
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(col[position]))
	case []types.Date:
		return binary.LittleEndian.AppendUint32(buf, uint32(col[position]))
	case []types.Datetime:
		return binary.LittleEndian.AppendUint64(buf, uint64(col[position]))
	case *types.Bytes:
		v := col.Get(int64(position))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v)))
		return append(buf, v...)
	}
	return buf
}

func (p *PagesIndex) Types() []types.Type {
	return p.typs
}

func (p *PagesIndex) JoinChannels() []int {
	return p.joinChannels
}

// Channels returns the per-channel batch lists, one vector per added batch.
func (p *PagesIndex) Channels() [][]*vector.Vector {
	return p.channels
}

// Addresses returns every row address in append order.
func (p *PagesIndex) Addresses() []uint64 {
	return p.addresses
}

func (p *PagesIndex) PositionCount() int {
	return p.positionCount
}

// EstimatedDistinctKeys is the HLL estimate of distinct join-key tuples.
func (p *PagesIndex) EstimatedDistinctKeys() uint64 {
	return p.sketch.Estimate()
}

// EstimatedSize is the retained bytes of the indexed vectors and addresses.
func (p *PagesIndex) EstimatedSize() int64 {
	var sz int64
	for _, vecs := range p.channels {
		for _, vec := range vecs {
			sz += vec.Size()
		}
	}
	return sz + int64(len(p.addresses))*8
}
