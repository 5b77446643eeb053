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
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/zirpins/presto/pkg/container/types"
	"github.com/zirpins/presto/pkg/container/vector"
)

// typeOps is the capability record of one column type. hashAt and equalAt
// are only called on non-null positions; the null handling above them is
// shared by every kernel so that both join sides agree bit-for-bit.
type typeOps struct {
	hashAt   func(vec *vector.Vector, position int) int32
	equalAt  func(left *vector.Vector, leftPosition int, right *vector.Vector, rightPosition int) bool
	appendTo func(dst *vector.Vector, src *vector.Vector, position int)
}

type fixedKeyT interface {
	comparable
	types.FixedSizeT
}

// hashFixed hashes the in-memory bytes of one fixed-width value. Hash values
// are only stable within a process run.
func hashFixed[T fixedKeyT](v T) int32 {
	return int32(xxhash.Sum64(unsafe.Slice((*byte)(unsafe.Pointer(&v)), unsafe.Sizeof(v))))
}

// hashFloat32 canonicalizes negative zero first, keeping the hash coherent
// with == equality.
func hashFloat32(v float32) int32 {
	if v == 0 {
		v = 0
	}
	return hashFixed(v)
}

func hashFloat64(v float64) int32 {
	if v == 0 {
		v = 0
	}
	return hashFixed(v)
}

func hashBytes(v []byte) int32 {
	return int32(xxhash.Sum64(v))
}

func fixedOps[T fixedKeyT](hash func(T) int32) typeOps {
	return typeOps{
		hashAt: func(vec *vector.Vector, position int) int32 {
			return hash(vector.MustFixedCol[T](vec)[position])
		},
		equalAt: func(left *vector.Vector, leftPosition int, right *vector.Vector, rightPosition int) bool {
			return vector.MustFixedCol[T](left)[leftPosition] == vector.MustFixedCol[T](right)[rightPosition]
		},
		appendTo: func(dst *vector.Vector, src *vector.Vector, position int) {
			vector.AppendFixed(dst, vector.MustFixedCol[T](src)[position], src.IsNull(position))
		},
	}
}

func bytesOps() typeOps {
	return typeOps{
		hashAt: func(vec *vector.Vector, position int) int32 {
			return hashBytes(vec.GetBytes(int64(position)))
		},
		equalAt: func(left *vector.Vector, leftPosition int, right *vector.Vector, rightPosition int) bool {
			return bytes.Equal(left.GetBytes(int64(leftPosition)), right.GetBytes(int64(rightPosition)))
		},
		appendTo: func(dst *vector.Vector, src *vector.Vector, position int) {
			vector.AppendBytes(dst, src.GetBytes(int64(position)), src.IsNull(position))
		},
	}
}

var typeOpsRegistry = map[types.T]typeOps{
	types.T_bool:     fixedOps[bool](hashFixed[bool]),
	types.T_int8:     fixedOps[int8](hashFixed[int8]),
	types.T_int16:    fixedOps[int16](hashFixed[int16]),
	types.T_int32:    fixedOps[int32](hashFixed[int32]),
	types.T_int64:    fixedOps[int64](hashFixed[int64]),
	types.T_uint8:    fixedOps[uint8](hashFixed[uint8]),
	types.T_uint16:   fixedOps[uint16](hashFixed[uint16]),
	types.T_uint32:   fixedOps[uint32](hashFixed[uint32]),
	types.T_uint64:   fixedOps[uint64](hashFixed[uint64]),
	types.T_float32:  fixedOps[float32](hashFloat32),
	types.T_float64:  fixedOps[float64](hashFloat64),
	types.T_date:     fixedOps[types.Date](hashFixed[types.Date]),
	types.T_datetime: fixedOps[types.Datetime](hashFixed[types.Datetime]),
	types.T_char:     bytesOps(),
	types.T_varchar:  bytesOps(),
}

func opsForType(t types.T) (typeOps, bool) {
	ops, ok := typeOpsRegistry[t]
	return ops, ok
}

// channelHash is the per-channel hash contribution: NULL hashes as zero.
func channelHash(ops typeOps, vec *vector.Vector, position int) int32 {
	if vec.IsNull(position) {
		return 0
	}
	return ops.hashAt(vec, position)
}

// channelEquals is per-channel join-key equality: two NULLs match, NULL
// against a value does not.
func channelEquals(ops typeOps, left *vector.Vector, leftPosition int, right *vector.Vector, rightPosition int) bool {
	leftNull := left.IsNull(leftPosition)
	rightNull := right.IsNull(rightPosition)
	if leftNull || rightNull {
		return leftNull && rightNull
	}
	return ops.equalAt(left, leftPosition, right, rightPosition)
}
