// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.opendefense.cloud/mailforge/pkg/apis/mail/v1alpha1"
	"go.opendefense.cloud/mailforge/pkg/compiler"
	"go.opendefense.cloud/mailforge/pkg/config"
	"go.opendefense.cloud/mailforge/pkg/emitter"
	"go.opendefense.cloud/mailforge/pkg/observability"
)

func main() {
	// Environment variables seed the flag defaults, flags win.
	cliCfg := config.LoadCLIConfigFromEnv()

	rootCmd := &cobra.Command{
		Use:   "mailforge [config-file]",
		Short: "compile a declarative mail deployment into Kubernetes manifests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidateCLIConfig(cliCfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log, err := observability.NewLogger(observability.LoggerConfig{
				Level:       cliCfg.Logging.Level,
				Encoding:    cliCfg.Logging.Encoding,
				Development: cliCfg.Logging.Development,
			})
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			cfg, err := v1alpha1.Load(args[0])
			if err != nil {
				return err
			}

			graph, err := compiler.New(cfg, compiler.WithLogger(log)).Compile()
			if err != nil {
				return fmt.Errorf("compilation failed: %w", err)
			}

			out := os.Stdout
			if cliCfg.Output != "-" {
				f, err := os.Create(cliCfg.Output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			if err := emitter.Emit(out, graph, cfg.Overrides); err != nil {
				return fmt.Errorf("failed to emit manifests: %w", err)
			}

			log.Info("Emitted manifests", "resources", len(graph.Resources()), "output", cliCfg.Output)
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cliCfg.Output, "output", "o", cliCfg.Output, "file the manifest stream is written to, - for stdout")
	flags.StringVar(&cliCfg.Logging.Level, "log-level", cliCfg.Logging.Level, "log level (debug, info, warn, error)")
	flags.StringVar(&cliCfg.Logging.Encoding, "log-encoding", cliCfg.Logging.Encoding, "log encoding (json, console)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("Failed with: %s", err)
		os.Exit(1)
	}
}
