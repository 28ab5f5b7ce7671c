// Copyright © 2024 Meroxa, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cerrors is the only place errors are created in teknek. Errors made
// with New and Errorf remember where they were created, the logger prints
// those locations as the error stack.
package cerrors

import (
	"errors" //nolint:depguard // the std. errors package is allowed only in this package
	"fmt"
	"reflect"
	"runtime"

	"golang.org/x/xerrors" //nolint:depguard // the xerrors package is allowed only in this package
)

var (
	New    = xerrors.New    //nolint:forbidigo // xerrors.New is allowed here, but not anywhere else
	Errorf = xerrors.Errorf //nolint:forbidigo // xerrors.Errorf is allowed here, but not anywhere else
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// ErrEmptyName is returned when a plan, table or registry entry has no name.
var ErrEmptyName = New("name must not be empty")

// Frame is the location where an error in a chain was created.
type Frame struct {
	Func string `json:"func,omitempty"`
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

func (f Frame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.Func, f.File, f.Line)
}

// StackTrace returns the frames of all errors in the chain of err that were
// created by this package, outermost first. Errors joined with Join are not
// descended into.
func StackTrace(err error) []Frame {
	var frames []Frame
	for ; err != nil; err = errors.Unwrap(err) {
		if f, ok := creationFrame(err); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// GetStackTrace is StackTrace in the shape of zerolog.ErrorStackMarshaler.
func GetStackTrace(err error) interface{} {
	defer func() { recover() }() //nolint:errcheck // a broken stack must not break logging
	return StackTrace(err)
}

// creationFrame reads the unexported frame recorded by xerrors. The recorded
// program counters start with the xerrors constructor followed by its caller.
func creationFrame(err error) (Frame, bool) {
	v := reflect.ValueOf(err)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct || v.Elem().Type().PkgPath() != "golang.org/x/xerrors" {
		return Frame{}, false
	}
	pcs := v.Elem().FieldByName("frame").FieldByName("frames")
	if !pcs.IsValid() {
		return Frame{}, false
	}
	pc := make([]uintptr, pcs.Len())
	for i := range pc {
		pc[i] = uintptr(pcs.Index(i).Uint())
	}

	frames := runtime.CallersFrames(pc)
	if _, more := frames.Next(); !more {
		return Frame{}, false
	}
	caller, _ := frames.Next()
	if caller.Function == "" {
		return Frame{}, false
	}
	return Frame{Func: caller.Function, File: caller.File, Line: caller.Line}, true
}
