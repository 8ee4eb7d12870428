package singleinstance

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func startTestServer(t *testing.T, onShow func()) *Server {
	t.Helper()
	// Port 0 lets the OS pick a free port; notify() is pointed at it directly.
	t.Setenv("DICTYY_PORT", "0")

	srv := NewServer(onShow)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestNotifyTriggersShow(t *testing.T) {
	shown := make(chan struct{}, 1)
	srv := startTestServer(t, func() { shown <- struct{}{} })

	if !notify(srv.Port(), 2*time.Second) {
		t.Fatal("notify did not reach the resident")
	}
	select {
	case <-shown:
	case <-time.After(2 * time.Second):
		t.Fatal("onShow was not invoked")
	}
}

func TestNotifyNoResident(t *testing.T) {
	srv := startTestServer(t, nil)
	port := srv.Port()
	srv.Close()
	// Give the OS a moment to release the port.
	time.Sleep(50 * time.Millisecond)

	if notify(port, 200*time.Millisecond) {
		t.Fatal("notify claimed a resident on a closed port")
	}
}

func TestPingHandshake(t *testing.T) {
	srv := startTestServer(t, nil)

	if !ping("127.0.0.1:"+strconv.Itoa(srv.Port()), time.Second) {
		t.Fatal("ping failed against a live resident")
	}
}
