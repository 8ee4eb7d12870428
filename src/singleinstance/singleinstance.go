// Package singleinstance keeps one resident Dictyy per machine. The first
// launch binds a loopback TCP port; later launches detect it, ask the
// resident to show its window, and exit.
package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	residentHost = "127.0.0.1"
	defaultPort  = 49560

	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
	showRequest  = "SHOW\n"
	okResponse   = "OK\n"
)

// getPort returns the loopback port, overridable via DICTYY_PORT for tests
// and parallel installs. Port 0 means an ephemeral bind; anything else is
// clamped to the unprivileged range.
func getPort() int {
	port := defaultPort
	if v := os.Getenv("DICTYY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	if port != 0 && (port < 1024 || port > 65535) {
		port = defaultPort
	}
	return port
}

// Server owns the resident endpoint.
type Server struct {
	lis    net.Listener
	port   int
	onShow func()
}

// NewServer creates a server that invokes onShow whenever a later launch
// asks for the window.
func NewServer(onShow func()) *Server {
	return &Server{onShow: onShow}
}

// Start binds the resident port. A bind failure means another instance is
// already resident; the caller should delegate and exit.
func (s *Server) Start(ctx context.Context) error {
	if s.lis != nil {
		return nil
	}
	port := getPort()
	addr := fmt.Sprintf("%s:%d", residentHost, port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.lis = lis
	s.port = lis.Addr().(*net.TCPAddr).Port
	log.Printf("singleinstance: listening on %s", lis.Addr())
	go s.acceptLoop(ctx)
	return nil
}

// Port returns the bound port, 0 before Start.
func (s *Server) Port() int { return s.port }

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		c, err := s.lis.Accept()
		if err != nil {
			return
		}
		_ = c.SetDeadline(time.Now().Add(3 * time.Second))
		line, _ := bufio.NewReader(c).ReadString('\n')
		switch line {
		case pingRequest:
			_, _ = c.Write([]byte(pongResponse))
		case showRequest:
			log.Printf("singleinstance: show request from %s", c.RemoteAddr())
			_, _ = c.Write([]byte(okResponse))
			if s.onShow != nil {
				s.onShow()
			}
		}
		_ = c.Close()

		select {
		case <-ctx.Done():
			_ = s.lis.Close()
			return
		default:
		}
	}
}

func (s *Server) Close() error {
	if s.lis != nil {
		err := s.lis.Close()
		s.lis = nil
		return err
	}
	return nil
}

// NotifyExisting looks for a resident instance. When one answers, it is
// asked to show its window and true is returned; the caller should exit.
func NotifyExisting(timeout time.Duration) bool {
	return notify(getPort(), timeout)
}

func notify(port int, timeout time.Duration) bool {
	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
	if !ping(addr, timeout) {
		return false
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(showRequest)); err != nil {
		return false
	}
	resp, _ := bufio.NewReader(conn).ReadString('\n')
	return resp == okResponse
}

// ping verifies the port is held by a resident and not some other process.
func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, _ := bufio.NewReader(conn).ReadString('\n')
	return resp == pongResponse
}
