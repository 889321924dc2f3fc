/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package main

import (
	"os"

	"github.com/named-data/ndnfw/core"
	"github.com/named-data/ndnfw/executor"
)

// Version of ndnfw.
var Version string

// BuildTime contains the timestamp of when the version of ndnfw was built.
var BuildTime string

func main() {
	core.Version = Version
	core.BuildTime = BuildTime

	if err := executor.CmdNdnfw().Execute(); err != nil {
		os.Exit(1)
	}
}
