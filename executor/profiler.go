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
	"runtime"
	"runtime/pprof"

	"github.com/named-data/ndnfw/core"
)

// Profiler writes CPU, memory and block profiles selected in the configuration.
type Profiler struct {
	config  *core.Config
	cpuFile *os.File
	block   *pprof.Profile
}

// NewProfiler creates a Profiler.
func NewProfiler(config *core.Config) *Profiler {
	return &Profiler{config: config}
}

func (p *Profiler) String() string {
	return "Profiler"
}

// Start begins CPU and block profiling if enabled.
func (p *Profiler) Start() (err error) {
	if p.config.Core.CpuProfile != "" {
		if p.cpuFile, err = os.Create(p.config.Core.CpuProfile); err != nil {
			return fmt.Errorf("unable to open output file for CPU profile: %w", err)
		}
		core.LogInfo(p, "Profiling CPU - outputting to ", p.config.Core.CpuProfile)
		if err = pprof.StartCPUProfile(p.cpuFile); err != nil {
			p.cpuFile.Close()
			p.cpuFile = nil
			return fmt.Errorf("unable to start CPU profile: %w", err)
		}
	}

	if p.config.Core.BlockProfile != "" {
		core.LogInfo(p, "Profiling blocking operations - outputting to ", p.config.Core.BlockProfile)
		runtime.SetBlockProfileRate(1)
		p.block = pprof.Lookup("block")
	}
	return nil
}

// Stop writes the memory and block profiles and ends CPU profiling.
func (p *Profiler) Stop() (err error) {
	if p.config.Core.MemProfile != "" {
		if err = p.writeProfile(p.config.Core.MemProfile, func(f *os.File) error {
			runtime.GC()
			return pprof.WriteHeapProfile(f)
		}); err != nil {
			core.LogError(p, "Unable to write memory profile: ", err)
		}
	}

	if p.block != nil {
		if err = p.writeProfile(p.config.Core.BlockProfile, func(f *os.File) error {
			return p.block.WriteTo(f, 0)
		}); err != nil {
			core.LogError(p, "Unable to write block profile: ", err)
		}
		runtime.SetBlockProfileRate(0)
		p.block = nil
	}

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
		p.cpuFile = nil
	}
	return err
}

func (p *Profiler) writeProfile(filename string, write func(f *os.File) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}
