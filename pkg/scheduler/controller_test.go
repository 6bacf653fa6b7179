package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestControllerStartsStopped(t *testing.T) {
	controller := NewController()
	if controller.Running() {
		t.Fatalf("expected stopped controller")
	}
	if got := controller.State(); got != "stopped" {
		t.Fatalf("expected stopped state, got %q", got)
	}
}

func TestControllerWaitBlocksUntilStart(t *testing.T) {
	controller := NewController()

	done := make(chan uint64, 1)
	go func() {
		epoch, err := controller.Wait(context.Background())
		if err == nil {
			done <- epoch
		}
	}()

	select {
	case <-time.After(100 * time.Millisecond):
	case epoch := <-done:
		t.Fatalf("expected wait to block, got epoch %d", epoch)
	}

	controller.Start()

	select {
	case epoch := <-done:
		if !controller.Current(epoch) {
			t.Fatalf("expected epoch %d to be current", epoch)
		}
	case <-time.After(time.Second):
		t.Fatalf("controller wait did not return after start")
	}
}

func TestControllerStartIsIdempotent(t *testing.T) {
	controller := NewController()
	if !controller.Start() {
		t.Fatalf("expected first start to transition")
	}
	epoch, err := controller.Wait(context.Background())
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if controller.Start() {
		t.Fatalf("expected second start to be a no-op")
	}
	if !controller.Current(epoch) {
		t.Fatalf("repeated start must not open a new epoch")
	}
}

func TestControllerRestartInvalidatesEpoch(t *testing.T) {
	controller := NewController()
	controller.Start()
	first, _ := controller.Wait(context.Background())

	controller.Stop()
	if controller.Current(first) {
		t.Fatalf("stopped controller must not report a current epoch")
	}
	controller.Start()
	if controller.Current(first) {
		t.Fatalf("epoch from the previous run must be stale")
	}
	second, _ := controller.Wait(context.Background())
	if second == first {
		t.Fatalf("expected a new epoch after restart")
	}
}

func TestControllerWaitRespectsContextCancellation(t *testing.T) {
	controller := NewController()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := controller.Wait(ctx)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context cancellation, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("controller wait did not exit on cancellation")
	}
}
