// Copyright 2026 Google LLC
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

// Package cmd implements the fiosemu command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fiosemu/fiosemu/cfg"
	"github.com/fiosemu/fiosemu/common"
	"github.com/fiosemu/fiosemu/internal/kernel"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"
)

// kernelFactory builds the backend for a validated config.
type kernelFactory func(c *cfg.Config) (kernel.Kernel, error)

func newKernel(c *cfg.Config) (kernel.Kernel, error) {
	switch c.Backend.Kind {
	case cfg.BackendKindMemory:
		return kernel.NewMemory(), nil
	case cfg.BackendKindUnix:
		return kernel.NewUnix()
	case cfg.BackendKindOS:
		return kernel.NewOS(), nil
	}
	return nil, fmt.Errorf("unsupported backend %q", c.Backend.Kind)
}

type app struct {
	v          *viper.Viper
	configFile string
	newKernel  kernelFactory
}

func newRootCmd(newKernel kernelFactory) (*cobra.Command, error) {
	a := &app{
		v:         viper.New(),
		newKernel: newKernel,
	}

	rootCmd := &cobra.Command{
		Use:   "fiosemu",
		Short: "Serve console file I/O requests from a host file system",
		Long: `fiosemu implements the asynchronous file I/O request model of a game
console on top of a host file system. Every request is identified by an op
whose result is kept until it is waited on or deleted.

The subcommands issue requests against the configured backend and print
their results.`,
		Version:       common.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config-file", "", "The path to the config file where all fiosemu related config needs to be specified.")
	if err := cfg.BindFlags(a.v, rootCmd.PersistentFlags()); err != nil {
		return nil, fmt.Errorf("error while declaring/binding flags: %w", err)
	}

	rootCmd.AddCommand(
		newStatCmd(a),
		newExistsCmd(a),
		newCatCmd(a),
		newLsCmd(a),
		newReplayCmd(a),
	)
	return rootCmd, nil
}

// loadConfig merges the config file, when given, with the flags.
func (a *app) loadConfig() (*cfg.Config, error) {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error while reading the config file: %w", err)
		}
	}

	var c cfg.Config
	err := a.v.Unmarshal(&c, viper.DecodeHook(cfg.DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
	})
	if err != nil {
		return nil, fmt.Errorf("error while unmarshaling the config: %w", err)
	}

	if err = cfg.Rationalize(&c); err != nil {
		return nil, fmt.Errorf("error while rationalizing the config: %w", err)
	}
	if err = cfg.ValidateConfig(&c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	rootCmd, err := newRootCmd(newKernel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err = rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
