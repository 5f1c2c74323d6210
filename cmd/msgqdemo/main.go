// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command msgqdemo runs a producer and a consumer task connected by a
// bounded message queue and reports what got through.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"code.hybscloud.com/msgq/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatal("error loading .env file: " + err.Error())
		}
	}

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "msgqdemo",
		Short:        "Producer/consumer message queue demo",
		Long:         "msgqdemo runs a periodic producer and a consumer over a bounded FIFO queue under a simulated 1000 Hz tick.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to a YAML config file")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the producer and consumer tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("duration") {
				cfg.Run.Duration, _ = cmd.Flags().GetDuration("duration")
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cfg, cmd.OutOrStdout())
		},
	}
	runCmd.Flags().Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	rootCmd.AddCommand(runCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	rootCmd.AddCommand(configCmd)

	return rootCmd
}
