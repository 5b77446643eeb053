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

package vector

import (
	"fmt"

	"github.com/zirpins/presto/pkg/common/perr"
	"github.com/zirpins/presto/pkg/container/nulls"
	"github.com/zirpins/presto/pkg/container/types"
)

// Vector represents one column block. Fixed-width values live in Col as a
// typed slice, varlen values as *types.Bytes. Null rows keep a zero value in
// Col and a bit in Nsp. Once handed to a join build a vector is read-only.
type Vector struct {
	Typ types.Type
	Col any
	Nsp *nulls.Nulls

	length int
}

func New(typ types.Type) *Vector {
	v := &Vector{
		Typ: typ,
		Nsp: &nulls.Nulls{},
	}
	switch typ.Oid {
	case types.T_bool:
		v.Col = []bool{}
	case types.T_int8:
		v.Col = []int8{}
	case types.T_int16:
		v.Col = []int16{}
	case types.T_int32:
		v.Col = []int32{}
	case types.T_int64:
		v.Col = []int64{}
	case types.T_uint8:
		v.Col = []uint8{}
	case types.T_uint16:
		v.Col = []uint16{}
	case types.T_uint32:
		v.Col = []uint32{}
	case types.T_uint64:
		v.Col = []uint64{}
	case types.T_float32:
		v.Col = []float32{}
	case types.T_float64:
		v.Col = []float64{}
	case types.T_date:
		v.Col = []types.Date{}
	case types.T_datetime:
		v.Col = []types.Datetime{}
	case types.T_char, types.T_varchar:
		v.Col = &types.Bytes{}
	default:
		panic(fmt.Sprintf("unexpected vector type %s", typ))
	}
	return v
}

func (v *Vector) Length() int {
	return v.length
}

func (v *Vector) SetLength(n int) {
	v.length = n
}

// IsNull reports whether row i holds NULL.
func (v *Vector) IsNull(i int) bool {
	return nulls.Contains(v.Nsp, uint64(i))
}

// MustFixedCol returns the typed values of a fixed-width vector.
func MustFixedCol[T types.FixedSizeT](v *Vector) []T {
	return v.Col.([]T)
}

// MustBytesCol returns the values of a varlen vector.
func MustBytesCol(v *Vector) *types.Bytes {
	return v.Col.(*types.Bytes)
}

// GetBytes returns the varlen value at row i.
func (v *Vector) GetBytes(i int64) []byte {
	return v.Col.(*types.Bytes).Get(i)
}

// AppendFixed appends one fixed-width value. A null row stores the zero
// value and sets the null bit.
func AppendFixed[T types.FixedSizeT](v *Vector, val T, isNull bool) {
	col := v.Col.([]T)
	if isNull {
		var zero T
		col = append(col, zero)
		nulls.Add(v.Nsp, uint64(v.length))
	} else {
		col = append(col, val)
	}
	v.Col = col
	v.length++
}

// AppendBytes appends one varlen value.
func AppendBytes(v *Vector, val []byte, isNull bool) {
	bs := v.Col.(*types.Bytes)
	if isNull {
		bs.Append([]byte{})
		nulls.Add(v.Nsp, uint64(v.length))
	} else {
		bs.Append(val)
	}
	v.length++
}

// Size estimates the retained bytes of the vector.
func (v *Vector) Size() int64 {
	var sz int64
	if bs, ok := v.Col.(*types.Bytes); ok {
		sz = bs.Size()
	} else {
		sz = int64(v.length) * int64(v.Typ.TypeSize())
	}
	return sz + nulls.Size(v.Nsp)
}

func (v *Vector) String() string {
	return fmt.Sprintf("%s[%d]-%s", v.Typ, v.length, nulls.String(v.Nsp))
}

// UnionOne appends row sel of w to v. The null bit travels with the value.
func UnionOne(v, w *Vector, sel int64) error {
	if v.Typ.Oid != w.Typ.Oid {
		return perr.NewInternal("union of %s vector with %s vector", v.Typ, w.Typ)
	}
	isNull := nulls.Contains(w.Nsp, uint64(sel))
	switch v.Typ.Oid {
	case types.T_bool:
		AppendFixed(v, w.Col.([]bool)[sel], isNull)
	case types.T_int8:
		AppendFixed(v, w.Col.([]int8)[sel], isNull)
	case types.T_int16:
		AppendFixed(v, w.Col.([]int16)[sel], isNull)
	case types.T_int32:
		AppendFixed(v, w.Col.([]int32)[sel], isNull)
	case types.T_int64:
		AppendFixed(v, w.Col.([]int64)[sel], isNull)
	case types.T_uint8:
		AppendFixed(v, w.Col.([]uint8)[sel], isNull)
	case types.T_uint16:
		AppendFixed(v, w.Col.([]uint16)[sel], isNull)
	case types.T_uint32:
		AppendFixed(v, w.Col.([]uint32)[sel], isNull)
	case types.T_uint64:
		AppendFixed(v, w.Col.([]uint64)[sel], isNull)
	case types.T_float32:
		AppendFixed(v, w.Col.([]float32)[sel], isNull)
	case types.T_float64:
		AppendFixed(v, w.Col.([]float64)[sel], isNull)
	case types.T_date:
		AppendFixed(v, w.Col.([]types.Date)[sel], isNull)
	case types.T_datetime:
		AppendFixed(v, w.Col.([]types.Datetime)[sel], isNull)
	case types.T_char, types.T_varchar:
		AppendBytes(v, w.Col.(*types.Bytes).Get(sel), isNull)
	default:
		return perr.NewInternal("union of unexpected type %s", v.Typ)
	}
	return nil
}
