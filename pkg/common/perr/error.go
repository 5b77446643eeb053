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

// Package perr carries the coded errors of the join kernel compiler. Shape
// and type errors are raised when a factory is compiled, never during
// probing; compilation errors keep their root cause.
package perr

import (
	"errors"
	"fmt"
)

const (
	Ok uint16 = 0

	// Group 1: internal errors
	ErrInternal uint16 = 20101

	// Group 2: invalid input
	ErrBadConfig    uint16 = 20300
	ErrInvalidShape uint16 = 20301

	// Group 3: specialization failures
	ErrUnsupportedType uint16 = 20401
	ErrCompilation     uint16 = 20402

	// Group 4: resource limits
	ErrCapacity uint16 = 20501
)

type Error struct {
	code    uint16
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Code() uint16 {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(code uint16, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func NewInternal(format string, args ...any) *Error {
	return New(ErrInternal, format, args...)
}

func NewBadConfig(format string, args ...any) *Error {
	return New(ErrBadConfig, format, args...)
}

func NewInvalidShape(format string, args ...any) *Error {
	return New(ErrInvalidShape, format, args...)
}

func NewUnsupportedType(format string, args ...any) *Error {
	return New(ErrUnsupportedType, format, args...)
}

// NewCompilation wraps a specialization backend failure, keeping cause
// reachable through errors.Unwrap.
func NewCompilation(cause error, format string, args ...any) *Error {
	return &Error{code: ErrCompilation, message: fmt.Sprintf(format, args...), cause: cause}
}

func NewCapacity(format string, args ...any) *Error {
	return New(ErrCapacity, format, args...)
}

// Code extracts the error code, Ok for nil and ErrInternal for foreign errors.
func Code(err error) uint16 {
	if err == nil {
		return Ok
	}
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ErrInternal
}

func IsInvalidShape(err error) bool {
	return Code(err) == ErrInvalidShape
}

func IsUnsupportedType(err error) bool {
	return Code(err) == ErrUnsupportedType
}

func IsCompilation(err error) bool {
	return Code(err) == ErrCompilation
}

func IsCapacity(err error) bool {
	return Code(err) == ErrCapacity
}
