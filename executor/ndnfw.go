/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package executor assembles and runs a forwarder from its configuration.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/named-data/ndnfw/core"
	"github.com/named-data/ndnfw/face"
	"github.com/named-data/ndnfw/fw"
	"github.com/named-data/ndnfw/monitor"
	"github.com/named-data/ndnfw/readvertise"
	"github.com/named-data/ndnfw/readvertise/gqldest"
	"go.uber.org/multierr"
)

// StopTimeout bounds how long Stop waits for destinations to withdraw prefixes.
const StopTimeout = 5 * time.Second

// Ndnfw is the wrapper class for the forwarding daemon.
type Ndnfw struct {
	config   *core.Config
	profiler *Profiler

	coordinator *readvertise.Coordinator
	forwarder   *fw.Forwarder
	nullFace    *fw.Face

	monitor       *monitor.Monitor
	detachMonitor func()
}

// NewNdnfw creates the daemon and initializes logging.
func NewNdnfw(config *core.Config) (*Ndnfw, error) {
	core.StartTimestamp = time.Now()
	if err := core.InitializeLogger(config); err != nil {
		return nil, err
	}
	return &Ndnfw{
		config:   config,
		profiler: NewProfiler(config),
	}, nil
}

func (n *Ndnfw) String() string {
	return "Main"
}

// Start runs the daemon. This function is non-blocking.
func (n *Ndnfw) Start() (err error) {
	core.LogInfo(n, "Starting ndnfw ", core.Version)

	if err = n.profiler.Start(); err != nil {
		return err
	}

	n.coordinator = readvertise.NewCoordinator(readvertise.MakeConfig(n.config))
	if dpdk := n.config.Readvertise.NdnDpdk; dpdk.Enabled {
		dest, err := gqldest.New(gqldest.Config{URI: dpdk.Uri, FaceID: dpdk.FaceID})
		if err != nil {
			return fmt.Errorf("NDN-DPDK destination: %w", err)
		}
		n.coordinator.AddDestination(dest)
	}

	if n.forwarder, err = fw.New(n.config, n.coordinator); err != nil {
		return err
	}

	if n.nullFace, err = n.forwarder.AddFace(face.NewNullTransport(), fw.FaceAttributes{
		Local:    true,
		Describe: "null",
	}); err != nil {
		return err
	}

	if n.config.Monitor.Enabled {
		n.monitor = monitor.New(monitor.Config{Bind: n.config.Monitor.Bind, Port: n.config.Monitor.Port})
		n.detachMonitor = n.monitor.Attach(n.forwarder)
		if _, err = n.monitor.Start(); err != nil {
			return fmt.Errorf("monitor: %w", err)
		}
	}
	return nil
}

// Forwarder returns the running forwarder.
func (n *Ndnfw) Forwarder() *fw.Forwarder {
	return n.forwarder
}

// Coordinator returns the readvertise coordinator.
func (n *Ndnfw) Coordinator() *readvertise.Coordinator {
	return n.coordinator
}

// Stop shuts down the daemon, withdrawing advertised prefixes.
func (n *Ndnfw) Stop() (err error) {
	core.LogInfo(n, "Forwarder shutting down ...")

	if n.monitor != nil {
		n.detachMonitor()
		err = multierr.Append(err, n.monitor.Close())
	}
	if n.forwarder != nil {
		err = multierr.Append(err, n.forwarder.Close())
	}
	if n.coordinator != nil {
		ctx, cancel := context.WithTimeout(context.Background(), StopTimeout)
		err = multierr.Append(err, n.coordinator.Close(ctx))
		cancel()
	}
	err = multierr.Append(err, n.profiler.Stop())

	if err != nil {
		core.LogWarn(n, "Stopped with errors: ", err)
	}
	core.ShutdownLogger()
	return err
}
