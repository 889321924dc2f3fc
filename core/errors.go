/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import "errors"

// Error definitions
var (
	ErrForwarderClosed = errors.New("forwarder is closed")
	ErrFaceClosed      = errors.New("face is closed")
	ErrUnknownStrategy = errors.New("unknown forwarding strategy")
	ErrConfigFormat    = errors.New("unrecognized configuration file format")
)
