// Copyright 2025 speclabs
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

// Package log narrates the publishing run to the operator. Every line is
// mirrored into zerolog so structured output stays available for debugging.
package log

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent file entries
	nameWidth  = 20 // Base width for logical file name
	pathWidth  = 45 // Width for target path
)

// 📢 Console provides user-friendly feedback as each step of the run begins.
type Console struct {
	log zerolog.Logger
}

// 🎯 NewConsole creates a console narrator backed by the context logger.
func NewConsole(ctx context.Context) *Console {
	return &Console{
		log: *zerolog.Ctx(ctx),
	}
}

// 📝 Step announces a workflow step as it begins.
func (c *Console) Step(msg string) {
	pterm.Info.WithPrefix(pterm.Prefix{Text: "▶"}).Println(msg)
	c.log.Info().Msg(msg)
}

// ✅ Success reports a completed run or sub-step.
func (c *Console) Success(msg string) {
	pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(msg)
	c.log.Info().Msg(msg)
}

// ⏭ Skip reports a step that was intentionally not performed.
func (c *Console) Skip(msg string) {
	pterm.Info.WithPrefix(pterm.Prefix{Text: "⏭"}).Println(msg)
	c.log.Info().Msg(msg)
}

// ⚠️ Warning reports a non-fatal anomaly.
func (c *Console) Warning(msg string) {
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(msg)
	c.log.Warn().Msg(msg)
}

// ❌ Error reports a failure before the process aborts.
func (c *Console) Error(msg string, err error) {
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(msg)
	if err != nil {
		pterm.Error.Println(err)
		c.log.Error().Err(err).Msg(msg)
		return
	}
	c.log.Error().Msg(msg)
}

func (c *Console) Stepf(format string, args ...any)    { c.Step(fmt.Sprintf(format, args...)) }
func (c *Console) Successf(format string, args ...any) { c.Success(fmt.Sprintf(format, args...)) }
func (c *Console) Skipf(format string, args ...any)    { c.Skip(fmt.Sprintf(format, args...)) }

// 📄 FileSync describes one copy/convert pair for display.
type FileSync struct {
	Name      string // Logical name
	Target    string // JSON copy path
	Converted string // YAML sibling path
}

// 📝 LogFileSync prints one row of the copy/convert table.
func (c *Console) LogFileSync(op FileSync) {
	line := fmt.Sprintf("%s%s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(color.FgGreen).Sprint("✓"),
		fmt.Sprintf("%-*s", nameWidth, op.Name),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", pathWidth, op.Target)))
	fmt.Println(line)

	c.log.Info().
		Str("name", op.Name).
		Str("target", op.Target).
		Str("converted", op.Converted).
		Msg("synced file")
}
