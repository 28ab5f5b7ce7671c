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

package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
)

// Format is the output format of the logger.
type Format int

const (
	// FormatCLI writes human readable lines, colored on terminals.
	FormatCLI Format = iota
	// FormatJSON writes one JSON object per line.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatCLI:
		return "cli"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat parses "cli" or "json", ignoring case.
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(format) {
	case "cli":
		return FormatCLI, nil
	case "json":
		return FormatJSON, nil
	default:
		return -1, cerrors.Errorf("unsupported log format %q", format)
	}
}

// GetWriter wraps w so that it writes format f.
func GetWriter(w io.Writer, f Format) io.Writer {
	if f != FormatCLI {
		return w
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !isTerminal(w),
		TimeFormat: time.RFC3339,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
