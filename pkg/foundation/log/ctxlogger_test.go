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
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestCtxLogger(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name    string
		logfunc func(CtxLogger)
		want    string
	}{{
		name: "debug without component",
		logfunc: func(logger CtxLogger) {
			logger.Debug(ctx).Str("foo", "bar").Msg("")
		},
		want: `{"level":"debug","foo":"bar"}` + "\n",
	}, {
		name: "info with component",
		logfunc: func(logger CtxLogger) {
			logger.WithComponent("driver.Compiler").Info(ctx).Msg("compiled")
		},
		want: `{"level":"info","component":"driver.Compiler","message":"compiled"}` + "\n",
	}, {
		name: "warn with fields",
		logfunc: func(logger CtxLogger) {
			logger.Warn(ctx).Str(PlanNameField, "p").Int(DepthField, 2).Msg("")
		},
		want: `{"level":"warn","plan_name":"p","depth":2}` + "\n",
	}, {
		name: "err with nil error is info",
		logfunc: func(logger CtxLogger) {
			logger.Err(ctx, nil).Msg("")
		},
		want: `{"level":"info"}` + "\n",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			is := is.New(t)
			var out bytes.Buffer
			logger := New(zerolog.New(&out))
			tc.logfunc(logger)
			is.Equal(tc.want, out.String())
		})
	}
}

func TestZerologWithComponent(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer

	zl := New(zerolog.New(&out)).WithComponent("badger.DB").ZerologWithComponent()
	zl.Info().Msg("hi")

	is.Equal(`{"level":"info","component":"badger.DB","message":"hi"}`+"\n", out.String())
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "cli", want: FormatCLI},
		{in: "JSON", want: FormatJSON},
		{in: "xml", want: -1, wantErr: true},
		{in: "", want: -1, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			is := is.New(t)
			got, err := ParseFormat(tc.in)
			is.Equal(err != nil, tc.wantErr)
			is.Equal(got, tc.want)
		})
	}
}

func TestInitLogger(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	var out bytes.Buffer

	logger := InitLogger(&out, zerolog.WarnLevel, FormatCLI)
	logger.Info(ctx).Msg("dropped")
	logger.WithComponent("shell.Builder").Warn(ctx).Str(CommandField, "SAVE").Msg("no plan store configured")

	got := out.String()
	is.True(!strings.Contains(got, "dropped"))
	is.True(strings.Contains(got, "WRN no plan store configured"))
	is.True(strings.Contains(got, "command=SAVE"))
	is.True(!strings.Contains(got, "\x1b[")) // no colors outside a terminal
}

func TestNew_Hooks(t *testing.T) {
	is := is.New(t)
	var out bytes.Buffer

	hook := zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
		e.Int(DepthField, 1)
	})
	New(zerolog.New(&out), hook).Info(context.Background()).Msg("")
	is.Equal(out.String(), `{"level":"info","depth":1}`+"\n")
}
