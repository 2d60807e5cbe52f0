package connectivity

import (
	"context"
	"testing"
	"time"
)

func TestProbe_InitialStateOnline(t *testing.T) {
	probe := NewProbe(func(ctx context.Context) bool { return true }, time.Minute, nil)
	defer probe.Stop()

	if !probe.Online() {
		t.Error("Expected probe to start online when check succeeds")
	}
}

func TestProbe_InitialStateOffline(t *testing.T) {
	probe := NewProbe(func(ctx context.Context) bool { return false }, time.Minute, nil)
	defer probe.Stop()

	if probe.Online() {
		t.Error("Expected probe to start offline when check fails")
	}
}

func TestProbe_NilCheckIsOffline(t *testing.T) {
	probe := NewProbe(nil, time.Minute, nil)
	defer probe.Stop()

	if probe.Online() {
		t.Error("Expected probe without a check func to report offline")
	}
}

func TestProbe_SubscribeReceivesTransitions(t *testing.T) {
	probe := NewProbe(func(ctx context.Context) bool { return true }, time.Minute, nil)
	defer probe.Stop()

	ch := probe.Subscribe()

	probe.SetState(Offline)

	select {
	case state := <-ch:
		if state != Offline {
			t.Errorf("Expected Offline transition, got %v", state)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for transition")
	}
}

func TestProbe_NoNotificationWithoutTransition(t *testing.T) {
	probe := NewProbe(func(ctx context.Context) bool { return true }, time.Minute, nil)
	defer probe.Stop()

	ch := probe.Subscribe()

	// Same state again: subscribers stay quiet
	probe.SetState(Online)

	select {
	case state, ok := <-ch:
		if ok {
			t.Errorf("Expected no notification, got %v", state)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestProbe_StopClosesSubscribers(t *testing.T) {
	probe := NewProbe(func(ctx context.Context) bool { return true }, time.Minute, nil)
	ch := probe.Subscribe()

	probe.Stop()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Expected channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for channel close")
	}
}

func TestProbe_BackgroundRecheck(t *testing.T) {
	calls := make(chan struct{}, 10)
	check := func(ctx context.Context) bool {
		select {
		case calls <- struct{}{}:
		default:
		}
		return false
	}

	probe := NewProbe(check, 10*time.Millisecond, nil)
	defer probe.Stop()
	probe.Start()

	// Initial check plus at least one periodic re-check
	deadline := time.After(2 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-deadline:
			t.Fatal("Timed out waiting for periodic check")
		}
	}
}

func TestProbe_StopDuringTransitionsDoesNotPanic(t *testing.T) {
	probe := NewProbe(func(ctx context.Context) bool { return true }, time.Minute, nil)
	_ = probe.Subscribe()
	_ = probe.Subscribe()

	// Hammer state transitions while Stop closes the subscriber
	// channels; a send must never land on a closed channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		state := Offline
		for i := 0; i < 1000; i++ {
			probe.SetState(state)
			if state == Offline {
				state = Online
			} else {
				state = Offline
			}
		}
	}()

	probe.Stop()
	<-done

	// SetState after Stop still records the state, with nobody listening
	probe.SetState(Offline)
	if probe.Online() {
		t.Error("Expected probe to report offline after final SetState")
	}
}
