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

package types

// Bytes holds the values of a varlen column. All values share one backing
// buffer; value i is Data[Offsets[i] : Offsets[i]+Lengths[i]].
type Bytes struct {
	Data    []byte
	Offsets []uint32
	Lengths []uint32
}

func (bs *Bytes) Get(i int64) []byte {
	return bs.Data[bs.Offsets[i] : bs.Offsets[i]+bs.Lengths[i]]
}

func (bs *Bytes) Len() int {
	return len(bs.Offsets)
}

func (bs *Bytes) Append(vs ...[]byte) {
	for _, v := range vs {
		bs.Offsets = append(bs.Offsets, uint32(len(bs.Data)))
		bs.Lengths = append(bs.Lengths, uint32(len(v)))
		bs.Data = append(bs.Data, v...)
	}
}

// Size is the retained byte size of the column values.
func (bs *Bytes) Size() int64 {
	return int64(len(bs.Data)) + int64(len(bs.Offsets))*4 + int64(len(bs.Lengths))*4
}
