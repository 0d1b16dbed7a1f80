package nrsc5

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/brutella/dnssd"
)

// defaultServiceName builds "nrsc5 on <hostname>", the receiver-side
// analogue of the teacher's dns_sd_default_service_name.
func defaultServiceName() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "nrsc5"
	}
	hostname, _, _ = strings.Cut(hostname, ".")
	return "nrsc5 on " + hostname
}

// EventServer exposes one Session's event stream to TCP clients: every
// connection receives newline-delimited JSON encodings of dispatched
// Events, and the server advertises itself over mDNS so LAN clients can
// find it without a hardcoded address, mirroring the teacher's KISS-over-TCP
// server plus Bonjour/DNS-SD advertisement pair.
type EventServer struct {
	ln   net.Listener
	name string
	port int

	mu      sync.Mutex
	clients map[net.Conn]struct{}

	cancel context.CancelFunc
}

// NewEventServer starts listening on addr (e.g. ":9999") and installs
// itself as sess's event callback, fanning out every event to all
// connected clients.
func NewEventServer(sess *Session, addr, serviceName string) (*EventServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("nrsc5: starting event server: %w", err)
	}
	if serviceName == "" {
		serviceName = defaultServiceName()
	}

	port := ln.Addr().(*net.TCPAddr).Port
	s := &EventServer{
		ln:      ln,
		name:    serviceName,
		port:    port,
		clients: make(map[net.Conn]struct{}),
	}

	prevCB := sess.cfg.Callback
	sess.SetCallback(func(e Event) {
		if prevCB != nil {
			prevCB(e)
		}
		s.broadcast(e)
	})

	go s.acceptLoop()
	return s, nil
}

func (s *EventServer) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.clients[conn] = struct{}{}
		s.mu.Unlock()
	}
}

func (s *EventServer) broadcast(e Event) {
	line, err := json.Marshal(eventWire{Kind: e.Kind.String(), Event: e})
	if err != nil {
		logger.Errorf("event marshal failed: %v", err)
		return
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if _, err := conn.Write(line); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// eventWire is Event's wire encoding: the kind as a readable string
// alongside the raw struct, so clients don't have to know the EventKind
// int mapping.
type eventWire struct {
	Kind  string `json:"kind"`
	Event Event  `json:"event"`
}

// Advertise registers the server on mDNS as "<name>._nrsc5._tcp.local.",
// running until ctx is cancelled.
func (s *EventServer) Advertise(ctx context.Context) error {
	cfg := dnssd.Config{
		Name: s.name,
		Type: "_nrsc5._tcp",
		Port: s.port,
	}
	service, err := dnssd.NewService(cfg)
	if err != nil {
		return fmt.Errorf("nrsc5: building dnssd service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return fmt.Errorf("nrsc5: starting dnssd responder: %w", err)
	}
	if _, err := responder.Add(service); err != nil {
		return fmt.Errorf("nrsc5: registering dnssd service: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return responder.Respond(runCtx)
}

// Close stops advertising and closes the listener and all client
// connections.
func (s *EventServer) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = nil
	s.mu.Unlock()
	return s.ln.Close()
}
