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

// A synthetic address names one build-side row: the batch ordinal in the
// high 32 bits, the position within the batch in the low 32 bits. The
// all-ones value is reserved for "empty slot / not found".
const NotFound = ^uint64(0)

func EncodeSyntheticAddress(batchIndex, position int) uint64 {
	return uint64(uint32(batchIndex))<<32 | uint64(uint32(position))
}

func DecodeBatchIndex(address uint64) int {
	return int(address >> 32)
}

func DecodePosition(address uint64) int {
	return int(uint32(address))
}
