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

// Package shell implements an interactive builder for plans. Commands are
// single lines interpreted by a small state machine, every command returns the
// prompt of the resulting state and a message.
package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/teknek/teknek/pkg/foundation/cerrors"
	"github.com/teknek/teknek/pkg/foundation/log"
	"github.com/teknek/teknek/pkg/plan"
)

// State is a mode of the builder, it determines the accepted commands.
type State int

const (
	StateRoot State = iota
	StatePlan
	StateFeed
	StateOperator
	StateOffsetStorage
)

var prompts = map[State]string{
	StateRoot:          "teknek> ",
	StatePlan:          "plan> ",
	StateFeed:          "feed> ",
	StateOperator:      "operator> ",
	StateOffsetStorage: "offsetstorage> ",
}

// Prompt returns the prompt shown in state s.
func (s State) Prompt() string {
	return prompts[s]
}

// Response is the outcome of a single command.
type Response struct {
	Prompt  string
	Message string
}

// handler executes a command and returns the next state. Returning an error
// leaves the state unchanged.
type handler func(b *Builder, ctx context.Context, args []string) (State, error)

// transitions maps a state and the upper-cased first token of a command to
// its handler.
var transitions = map[State]map[string]handler{
	StateRoot: {
		"CREATE": (*Builder).createPlan,
	},
	StatePlan: {
		"CREATE": (*Builder).create,
		"SET":    (*Builder).setPlanField,
		"FOR":    (*Builder).addChild,
		"SAVE":   (*Builder).save,
	},
	StateFeed: {
		"SET":  (*Builder).setFeedProperty,
		"EXIT": (*Builder).exit,
	},
	StateOperator: {
		"EXIT": (*Builder).exit,
	},
	StateOffsetStorage: {
		"SET":  (*Builder).setOffsetStorageProperty,
		"EXIT": (*Builder).exit,
	},
}

// Builder builds a plan from commands. It is not safe for concurrent use,
// every authoring session needs its own Builder.
type Builder struct {
	state   State
	plan    *plan.Plan
	symbols *symbols
	store   *plan.Store

	logger log.CtxLogger
}

// New returns a builder in the root state. The store is used by SAVE and may
// be nil.
func New(logger log.CtxLogger, store *plan.Store) *Builder {
	return &Builder{
		state:   StateRoot,
		plan:    plan.New(""),
		symbols: newSymbols(),
		store:   store,
		logger:  logger.WithComponent("shell.Builder"),
	}
}

// Plan returns the plan being built.
func (b *Builder) Plan() *plan.Plan {
	return b.plan
}

// State returns the current state.
func (b *Builder) State() State {
	return b.state
}

// Parents returns the names of the operators that have the named operator as
// a child. More than one parent means the operator is a shared subtree.
func (b *Builder) Parents(name string) []string {
	return b.symbols.parents(name)
}

// Send interprets a single command. Invalid commands never change the state,
// they are reported in the message of the response.
func (b *Builder) Send(ctx context.Context, command string) Response {
	args := strings.Fields(command)
	if len(args) == 0 {
		return b.respond("")
	}
	head := strings.ToUpper(args[0])

	b.logger.Trace(ctx).
		Str(log.PromptField, b.state.Prompt()).
		Str(log.CommandField, command).
		Msg("received command")

	if head == "SHOW" && len(args) == 1 {
		return b.respond(b.show())
	}

	h, ok := transitions[b.state][head]
	if !ok {
		if b.state == StateRoot {
			return b.respond("Only valid commands are CREATE")
		}
		return b.respond(fmt.Sprintf("%q is unrecognized in this context", command))
	}

	next, err := h(b, ctx, args)
	if err != nil {
		var cmdErr *CommandError
		if !cerrors.As(err, &cmdErr) {
			cmdErr = &CommandError{Command: command, Msg: err.Error()}
		}
		b.logger.Debug(ctx).
			Str(log.CommandField, command).
			Str("reason", cmdErr.Msg).
			Msg("command rejected")
		return b.respond(cmdErr.Error())
	}
	b.state = next
	return b.respond("")
}

func (b *Builder) respond(msg string) Response {
	return Response{Prompt: b.state.Prompt(), Message: msg}
}

func (b *Builder) show() string {
	out, err := plan.MarshalJSON(b.plan)
	if err != nil {
		return err.Error()
	}
	return string(out)
}
