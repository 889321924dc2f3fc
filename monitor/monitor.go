/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package monitor streams forwarder events to WebSocket clients.
package monitor

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/named-data/ndnfw/core"
	"github.com/named-data/ndnfw/fw"
)

const clientQueueSize = 64

// Config contains Monitor configuration.
type Config struct {
	Bind string
	Port uint16
}

// Addr returns the listen address.
func (cfg Config) Addr() string {
	return net.JoinHostPort(cfg.Bind, strconv.FormatUint(uint64(cfg.Port), 10))
}

// Message is the JSON representation of a forwarder event.
type Message struct {
	Time     time.Time `json:"time"`
	Kind     string    `json:"kind"`
	Face     uint64    `json:"face,omitempty"`
	Describe string    `json:"describe,omitempty"`
	Name     string    `json:"name,omitempty"`
	Packet   string    `json:"packet,omitempty"`
}

// MakeMessage converts an event to a Message.
func MakeMessage(evt fw.Event) Message {
	msg := Message{
		Time: time.Now(),
		Kind: evt.Kind.String(),
	}
	if evt.Face != nil {
		msg.Face = evt.Face.ID()
		msg.Describe = evt.Face.Attributes().Describe
	}
	if evt.Name != nil {
		msg.Name = evt.Name.String()
	}
	if evt.Packet != nil {
		msg.Packet = evt.Packet.String()
		if msg.Name == "" {
			msg.Name = evt.Packet.Name().String()
		}
	}
	return msg
}

func isPacketEvent(kind fw.EventKind) bool {
	return kind == fw.PacketReceived || kind == fw.PacketTransmitted
}

// Status is served at /status.
type Status struct {
	Version  string      `json:"version"`
	Uptime   string      `json:"uptime"`
	Faces    int         `json:"faces"`
	Counters fw.Counters `json:"counters"`
}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	packets bool
}

// Monitor is a WebSocket server that relays forwarder events.
// Clients receive face, route and prefix events; packet events are sent only to
// clients that connect with the query parameter packets=1.
type Monitor struct {
	cfg      Config
	server   http.Server
	upgrader websocket.Upgrader

	mutex   sync.Mutex
	clients map[*client]struct{}
	fwd     *fw.Forwarder
}

// New creates a Monitor. Call Start to begin listening, or use Handler directly.
func New(cfg Config) *Monitor {
	m := &Monitor{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			WriteBufferPool: &sync.Pool{},
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/events", m.handleEvents)
	mux.HandleFunc("/status", m.handleStatus)
	m.server.Handler = mux
	return m
}

func (m *Monitor) String() string {
	return "Monitor"
}

// Handler returns the HTTP handler of the monitor.
func (m *Monitor) Handler() http.Handler {
	return m.server.Handler
}

// Attach subscribes the monitor to a forwarder. The returned function unsubscribes it.
func (m *Monitor) Attach(fwd *fw.Forwarder) (detach func()) {
	m.mutex.Lock()
	m.fwd = fwd
	m.mutex.Unlock()
	remove := fwd.AddObserver(m)
	return func() {
		remove()
		m.mutex.Lock()
		if m.fwd == fwd {
			m.fwd = nil
		}
		m.mutex.Unlock()
	}
}

// Start listens on the configured address and serves in the background.
func (m *Monitor) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", m.cfg.Addr())
	if err != nil {
		return nil, err
	}
	core.LogInfo(m, "Listening on ", ln.Addr())
	go func() {
		if err := m.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			core.LogError(m, "Unable to serve: ", err)
		}
	}()
	return ln.Addr(), nil
}

// Close stops the server and disconnects all clients.
func (m *Monitor) Close() error {
	err := m.server.Close()
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for c := range m.clients {
		m.removeLocked(c)
	}
	return err
}

// OnEvent implements fw.Observer. It never blocks: a client that falls behind misses events.
func (m *Monitor) OnEvent(evt fw.Event) {
	packet := isPacketEvent(evt.Kind)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	if len(m.clients) == 0 {
		return
	}

	var payload []byte
	for c := range m.clients {
		if packet && !c.packets {
			continue
		}
		if payload == nil {
			var err error
			if payload, err = json.Marshal(MakeMessage(evt)); err != nil {
				core.LogWarn(m, "Unable to encode event: ", err)
				return
			}
		}
		select {
		case c.send <- payload:
		default:
			core.LogTrace(m, "Client ", c.conn.RemoteAddr(), " is behind - DROP event")
		}
	}
}

// NClients returns the number of connected clients.
func (m *Monitor) NClients() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.clients)
}

func (m *Monitor) removeLocked(c *client) {
	if _, ok := m.clients[c]; !ok {
		return
	}
	delete(m.clients, c)
	close(c.send)
}

func (m *Monitor) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, clientQueueSize),
		packets: r.URL.Query().Get("packets") == "1",
	}
	m.mutex.Lock()
	m.clients[c] = struct{}{}
	m.mutex.Unlock()
	core.LogInfo(m, "Accepted client ", conn.RemoteAddr())

	go m.writeLoop(c)
	m.readLoop(c)
}

func (m *Monitor) writeLoop(c *client) {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			core.LogDebug(m, "Write to ", c.conn.RemoteAddr(), " failed: ", err)
			break
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

// readLoop discards client messages until the connection fails.
func (m *Monitor) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	m.mutex.Lock()
	m.removeLocked(c)
	m.mutex.Unlock()
	core.LogInfo(m, "Client ", c.conn.RemoteAddr(), " disconnected")
}

func (m *Monitor) handleStatus(w http.ResponseWriter, r *http.Request) {
	m.mutex.Lock()
	fwd := m.fwd
	m.mutex.Unlock()
	if fwd == nil {
		http.Error(w, "no forwarder", http.StatusServiceUnavailable)
		return
	}

	status := Status{
		Version:  core.Version,
		Uptime:   time.Since(core.StartTimestamp).Truncate(time.Second).String(),
		Faces:    len(fwd.Faces()),
		Counters: fwd.Counters(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
