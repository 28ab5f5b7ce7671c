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

package shell

import "fmt"

// CommandError describes a command that was rejected. It is reported to the
// user as the message of the response.
type CommandError struct {
	Command string
	Msg     string
}

func (e *CommandError) Error() string {
	return e.Msg
}

func commandErrorf(format string, args ...any) *CommandError {
	return &CommandError{Msg: fmt.Sprintf(format, args...)}
}

func usage(syntax string) *CommandError {
	return &CommandError{Msg: "usage: " + syntax}
}
