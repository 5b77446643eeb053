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

package nulls

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNulls(t *testing.T) {
	var nsp *Nulls
	require.False(t, Any(nsp))
	require.False(t, Contains(nsp, 0))
	require.Equal(t, 0, Length(nsp))

	nsp = Build(1, 3)
	require.True(t, Any(nsp))
	require.True(t, Contains(nsp, 1))
	require.True(t, Contains(nsp, 3))
	require.False(t, Contains(nsp, 0))
	require.False(t, Contains(nsp, 2))
	require.Equal(t, 2, Length(nsp))

	Add(nsp, 7)
	require.True(t, nsp.Contains(7))
	require.Equal(t, 3, nsp.Count())
}

func TestNullsClone(t *testing.T) {
	nsp := Build(5)
	cloned := nsp.Clone()
	cloned.Set(6)
	require.True(t, cloned.Contains(5))
	require.True(t, cloned.Contains(6))
	require.False(t, nsp.Contains(6))

	var empty *Nulls
	require.Nil(t, empty.Clone())
}

func TestNullsSize(t *testing.T) {
	require.Equal(t, int64(0), Size(nil))
	require.Greater(t, Size(Build(0, 100, 10000)), int64(0))
	require.Equal(t, "[]", String(nil))
	require.Equal(t, "[2]", String(Build(2)))
}
