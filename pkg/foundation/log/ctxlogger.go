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
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/teknek/teknek/pkg/foundation/cerrors"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerolog.ErrorStackMarshaler = cerrors.GetStackTrace
}

// CtxLogger wraps a zerolog.Logger. Its event methods take the context of the
// operation being logged, hooks installed on the logger read values such as
// the plan name from it. Events carry the component of the logger.
type CtxLogger struct {
	zerolog.Logger
	component string
}

// New creates a CtxLogger from logger, hooks are run for every event.
func New(logger zerolog.Logger, hooks ...zerolog.Hook) CtxLogger {
	for _, h := range hooks {
		logger = logger.Hook(h)
	}
	return CtxLogger{Logger: logger}
}

// Nop returns a disabled logger.
func Nop() CtxLogger {
	return CtxLogger{Logger: zerolog.Nop()}
}

// Test returns a logger writing to t.
func Test(t testing.TB) CtxLogger {
	return CtxLogger{Logger: zerolog.New(zerolog.NewTestWriter(t))}
}

// InitLogger returns a logger writing to w in format f. Events below level are
// dropped.
func InitLogger(w io.Writer, level zerolog.Level, f Format, hooks ...zerolog.Hook) CtxLogger {
	logger := zerolog.New(GetWriter(w, f)).
		Level(level).
		With().
		Timestamp().
		Stack().
		Logger()
	return New(logger, hooks...)
}

// WithComponent returns a copy of the logger tagging events with component.
// An empty component removes the tag.
func (l CtxLogger) WithComponent(component string) CtxLogger {
	l.component = component
	return l
}

// ZerologWithComponent returns the plain zerolog.Logger with the component
// attached, for libraries that take their own logger.
func (l CtxLogger) ZerologWithComponent() zerolog.Logger {
	if l.component == "" {
		return l.Logger
	}
	return l.Logger.With().Str(ComponentField, l.component).Logger()
}

// The methods below start an event at the respective level. The event is only
// written once Msg or Send is called on it.

func (l CtxLogger) Trace(ctx context.Context) *zerolog.Event { return l.event(ctx, l.Logger.Trace()) }
func (l CtxLogger) Debug(ctx context.Context) *zerolog.Event { return l.event(ctx, l.Logger.Debug()) }
func (l CtxLogger) Info(ctx context.Context) *zerolog.Event  { return l.event(ctx, l.Logger.Info()) }
func (l CtxLogger) Warn(ctx context.Context) *zerolog.Event  { return l.event(ctx, l.Logger.Warn()) }
func (l CtxLogger) Error(ctx context.Context) *zerolog.Event { return l.event(ctx, l.Logger.Error()) }

// Err starts an error event with err attached, or an info event if err is nil.
func (l CtxLogger) Err(ctx context.Context, err error) *zerolog.Event {
	return l.event(ctx, l.Logger.Err(err))
}

func (l CtxLogger) event(ctx context.Context, e *zerolog.Event) *zerolog.Event {
	e = e.Ctx(ctx)
	if l.component != "" {
		e = e.Str(ComponentField, l.component)
	}
	return e
}
