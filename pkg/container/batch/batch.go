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

// Package batch implements the page abstraction: an ordered tuple of column
// vectors sharing one row count. A batch handed to a join build is immutable;
// a batch under construction doubles as the output page builder.
package batch

import (
	"bytes"
	"fmt"

	"github.com/zirpins/presto/pkg/common/perr"
	"github.com/zirpins/presto/pkg/container/types"
	"github.com/zirpins/presto/pkg/container/vector"
)

type Batch struct {
	Vecs []*vector.Vector

	rowCount int
}

func New(typs []types.Type) *Batch {
	bat := &Batch{
		Vecs: make([]*vector.Vector, len(typs)),
	}
	for i, typ := range typs {
		bat.Vecs[i] = vector.New(typ)
	}
	return bat
}

func NewWithSize(n int) *Batch {
	return &Batch{
		Vecs: make([]*vector.Vector, n),
	}
}

// ChannelCount is the number of columns.
func (bat *Batch) ChannelCount() int {
	return len(bat.Vecs)
}

func (bat *Batch) RowCount() int {
	return bat.rowCount
}

func (bat *Batch) SetRowCount(n int) {
	bat.rowCount = n
}

// GetVector returns the block builder for one output channel.
func (bat *Batch) GetVector(channel int) *vector.Vector {
	return bat.Vecs[channel]
}

// Seal fixes the row count to the vector lengths. All vectors must agree.
func (bat *Batch) Seal() error {
	if len(bat.Vecs) == 0 {
		bat.rowCount = 0
		return nil
	}
	n := bat.Vecs[0].Length()
	for i, vec := range bat.Vecs {
		if vec.Length() != n {
			return perr.NewInternal("channel %d has %d rows, channel 0 has %d", i, vec.Length(), n)
		}
	}
	bat.rowCount = n
	return nil
}

// Size estimates the retained bytes of all vectors.
func (bat *Batch) Size() int64 {
	var sz int64
	for _, vec := range bat.Vecs {
		sz += vec.Size()
	}
	return sz
}

func (bat *Batch) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "batch{rows=%d", bat.rowCount)
	for _, vec := range bat.Vecs {
		fmt.Fprintf(&buf, " %s", vec.Typ)
	}
	buf.WriteString("}")
	return buf.String()
}
