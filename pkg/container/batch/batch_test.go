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

package batch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zirpins/presto/pkg/container/types"
	"github.com/zirpins/presto/pkg/container/vector"
)

func TestSeal(t *testing.T) {
	bat := New([]types.Type{types.T_int32.ToType(), types.T_varchar.ToType()})
	vector.AppendFixed(bat.Vecs[0], int32(1), false)
	vector.AppendBytes(bat.Vecs[1], []byte("a"), false)
	vector.AppendFixed(bat.Vecs[0], int32(2), false)
	vector.AppendBytes(bat.Vecs[1], []byte("b"), false)

	require.NoError(t, bat.Seal())
	require.Equal(t, 2, bat.RowCount())
	require.Equal(t, 2, bat.ChannelCount())
}

func TestSealRagged(t *testing.T) {
	bat := New([]types.Type{types.T_int32.ToType(), types.T_int32.ToType()})
	vector.AppendFixed(bat.Vecs[0], int32(1), false)
	require.Error(t, bat.Seal())
}

func TestSizeAndString(t *testing.T) {
	bat := New([]types.Type{types.T_int64.ToType()})
	vector.AppendFixed(bat.Vecs[0], int64(9), false)
	require.NoError(t, bat.Seal())
	require.Equal(t, int64(8), bat.Size())
	require.Contains(t, bat.String(), "BIGINT")
}
