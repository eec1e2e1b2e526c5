package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ziggway/insight/pkg/lifecycle"
)

func TestWaitForStartup(t *testing.T) {
	lc := lifecycle.New()

	var calls atomic.Int32
	lc.OnStartup(func() { calls.Add(1) })
	lc.OnStartup(func() { calls.Add(1) })

	if lc.Ready() {
		t.Errorf("ready before startup completed")
	}

	lc.WaitForStartup()

	if got := calls.Load(); got != 2 {
		t.Errorf("got %d startup calls, want 2", got)
	}
	if !lc.Ready() {
		t.Errorf("not ready after startup completed")
	}
}

func TestShutdownCancelsContext(t *testing.T) {
	lc := lifecycle.New()

	released := make(chan struct{})
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		close(released)
	})

	if err := lc.Shutdown(time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	select {
	case <-released:
	default:
		t.Errorf("shutdown hook did not run")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	if err := lc.Shutdown(10 * time.Millisecond); err == nil {
		t.Errorf("expected timeout error")
	}
}

func TestShutdownWithoutHooks(t *testing.T) {
	lc := lifecycle.New()
	if err := lc.Shutdown(time.Second); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}
