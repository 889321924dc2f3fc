/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package readvertise propagates prefixes announced by local faces to external
// prefix registration systems.
package readvertise

import (
	"context"

	"github.com/named-data/ndnfw/ndn"
)

// Destination is an external prefix registration system.
//
// Generally, a name advertised to a destination causes Interests matching the name
// to come to the forwarder.
type Destination interface {
	// Advertise registers the name. The returned handle is passed back to Withdraw.
	Advertise(ctx context.Context, name ndn.Name) (handle any, err error)
	// Withdraw unregisters a name previously advertised.
	Withdraw(ctx context.Context, name ndn.Name, handle any) error
}
