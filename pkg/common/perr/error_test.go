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

package perr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	require.Equal(t, Ok, Code(nil))
	require.Equal(t, ErrInvalidShape, Code(NewInvalidShape("channel %d", 3)))
	require.Equal(t, ErrUnsupportedType, Code(NewUnsupportedType("no caps")))
	require.Equal(t, ErrCapacity, Code(NewCapacity("too big")))
	require.Equal(t, ErrInternal, Code(errors.New("foreign")))

	require.True(t, IsInvalidShape(NewInvalidShape("x")))
	require.False(t, IsInvalidShape(NewCapacity("x")))
}

func TestCompilationKeepsCause(t *testing.T) {
	cause := errors.New("backend exploded")
	err := NewCompilation(cause, "compiling shape %s", "BIGINT|0")
	require.True(t, IsCompilation(err))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "backend exploded")
	require.Contains(t, err.Error(), "BIGINT|0")
}

func TestWrappedCodeSurvives(t *testing.T) {
	inner := NewInvalidShape("empty type vector")
	wrapped := fmt.Errorf("planner: %w", inner)
	require.Equal(t, ErrInvalidShape, Code(wrapped))
}
