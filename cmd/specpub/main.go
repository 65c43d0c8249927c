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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/speclabs/specpub/pkg/config"
	"github.com/speclabs/specpub/pkg/log"
	"github.com/speclabs/specpub/pkg/ops"
	"github.com/speclabs/specpub/pkg/updater"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// Handler carries the flag state for one invocation.
type Handler struct {
	configFile string
	dryRun     bool
	debug      bool
}

// NewCommand builds the root command.
func NewCommand() *cobra.Command {
	h := &Handler{}

	cmd := &cobra.Command{
		Use:           "specpub",
		Short:         "Publish OpenAPI specification and fixture updates to the public repository",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if h.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.Run(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&h.configFile, "config", "c", ".specpub.yaml", "config file path")
	cmd.PersistentFlags().BoolVar(&h.dryRun, "dry-run", false, "copy, convert and commit locally, but skip push and release")
	cmd.PersistentFlags().BoolVarP(&h.debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Run loads config, wires the real operations provider, and executes one
// publishing run.
func (h *Handler) Run(ctx context.Context) error {
	cfg, err := config.Load(ctx, h.configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	if h.dryRun {
		cfg.DryRun = true
	}

	system, err := ops.NewSystem(ops.Options{
		WorkDir:           cfg.Target,
		CredentialCommand: cfg.CredentialCommand,
	})
	if err != nil {
		return errors.Errorf("creating operations provider: %w", err)
	}

	u, err := updater.New(updater.Options{
		Config:  cfg,
		Ops:     system,
		Console: log.NewConsole(ctx),
	})
	if err != nil {
		return errors.Errorf("creating updater: %w", err)
	}

	return u.Run(ctx)
}

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	ctx := logger.WithContext(context.Background())

	if err := NewCommand().ExecuteContext(ctx); err != nil {
		// A guarded abort is an expected stop: one message, non-zero exit.
		var abort *updater.AbortError
		if errors.As(err, &abort) {
			fmt.Fprintln(os.Stderr, "specpub:", abort.Message)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "specpub:", err)
		os.Exit(1)
	}
}
