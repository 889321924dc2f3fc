/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package gqldest advertises prefixes as FIB entries of an NDN-DPDK forwarder via its GraphQL API.
package gqldest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/machinebox/graphql"
	"github.com/named-data/ndnfw/ndn"
)

// ErrNoFace indicates the nexthop face ID is missing.
var ErrNoFace = errors.New("nexthop face ID is missing")

// Config contains Destination configuration.
type Config struct {
	// URI is the HTTP URI of the GraphQL endpoint.
	URI string
	// FaceID is the NDN-DPDK face that leads back to this forwarder.
	FaceID string
	// Strategy is the optional strategy ID set on inserted FIB entries.
	Strategy string

	HTTPClient *http.Client
}

func (cfg *Config) applyDefaults() error {
	u, e := url.Parse(cfg.URI)
	if e != nil {
		return fmt.Errorf("URI: %w", e)
	}
	cfg.URI = u.String()
	if cfg.FaceID == "" {
		return ErrNoFace
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return nil
}

// Destination inserts one FIB entry per advertised name, pointing to a fixed face.
type Destination struct {
	cfg    Config
	client *graphql.Client
}

// New creates a Destination.
func New(cfg Config) (*Destination, error) {
	if e := cfg.applyDefaults(); e != nil {
		return nil, e
	}
	return &Destination{
		cfg:    cfg,
		client: graphql.NewClient(cfg.URI, graphql.WithHTTPClient(cfg.HTTPClient)),
	}, nil
}

func (d *Destination) String() string {
	return fmt.Sprintf("gqldest(%s face=%s)", d.cfg.URI, d.cfg.FaceID)
}

func (d *Destination) do(ctx context.Context, query string, vars map[string]any, key string, res any) error {
	req := graphql.NewRequest(query)
	for k, v := range vars {
		req.Var(k, v)
	}

	var response map[string]json.RawMessage
	if e := d.client.Run(ctx, req, &response); e != nil {
		return e
	}
	return json.Unmarshal(response[key], res)
}

// Advertise inserts a FIB entry. The handle is the FIB entry ID.
func (d *Destination) Advertise(ctx context.Context, name ndn.Name) (handle any, err error) {
	vars := map[string]any{
		"name":     name.String(),
		"nexthops": []string{d.cfg.FaceID},
	}
	if d.cfg.Strategy != "" {
		vars["strategy"] = d.cfg.Strategy
	}

	var fibEntryJ struct {
		ID string `json:"id"`
	}
	if e := d.do(ctx, `
		mutation insertFibEntry($name: Name!, $nexthops: [ID!]!, $strategy: ID) {
			insertFibEntry(name: $name, nexthops: $nexthops, strategy: $strategy) {
				id
			}
		}
	`, vars, "insertFibEntry", &fibEntryJ); e != nil {
		return nil, e
	}
	return fibEntryJ.ID, nil
}

// Withdraw deletes the FIB entry identified by handle.
func (d *Destination) Withdraw(ctx context.Context, name ndn.Name, handle any) error {
	id, _ := handle.(string)
	if id == "" {
		return nil
	}

	var deleted bool
	if e := d.do(ctx, `
		mutation delete($id: ID!) {
			delete(id: $id)
		}
	`, map[string]any{"id": id}, "delete", &deleted); e != nil {
		return e
	}
	if !deleted {
		return fmt.Errorf("FIB entry %s for %s not found", id, name)
	}
	return nil
}
