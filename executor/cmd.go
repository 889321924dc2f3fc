/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/named-data/ndnfw/core"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

// CmdNdnfw returns the root command of the daemon.
func CmdNdnfw() *cobra.Command {
	config := core.DefaultConfig()
	cmd := &cobra.Command{
		Use:     "ndnfw [CONFIG-FILE]",
		Short:   "NDN logical forwarding plane",
		Version: core.Version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(config, args)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&config.Core.CpuProfile, "cpu-profile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&config.Core.MemProfile, "mem-profile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&config.Core.BlockProfile, "block-profile", "", "Write block profile to file")
	return cmd
}

func run(config *core.Config, args []string) error {
	if len(args) > 0 {
		loaded, err := core.LoadConfig(args[0])
		if err != nil {
			return fmt.Errorf("unable to load configuration file: %w", err)
		}
		loaded.Core.BaseDir = filepath.Dir(args[0])
		loaded.Core.CpuProfile = config.Core.CpuProfile
		loaded.Core.MemProfile = config.Core.MemProfile
		loaded.Core.BlockProfile = config.Core.BlockProfile
		config = loaded
	}

	ndnfw, err := NewNdnfw(config)
	if err != nil {
		return err
	}
	if err = ndnfw.Start(); err != nil {
		ndnfw.Stop()
		return err
	}

	// set up signal handler channel and wait for interrupt
	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, unix.SIGTERM)
	receivedSig := <-sigChannel
	core.LogInfo(ndnfw, "Received signal ", receivedSig, " - exiting")

	return ndnfw.Stop()
}
