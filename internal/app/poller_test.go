package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NationalMuseumofDenmark/cip-go/cip"
	"github.com/NationalMuseumofDenmark/cip-go/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fakeVersion struct {
	resp cip.Response
	err  error
}

func (f fakeVersion) GetVersion(context.Context) (cip.Response, error) {
	return f.resp, f.err
}

func TestRefresh_RecordsServerStatus(t *testing.T) {
	var store state.Store
	src := fakeVersion{resp: cip.Response{
		"version": map[string]any{
			"cip":     map[string]any{"version": "9.0"},
			"cumulus": map[string]any{"version": "11.0.2"},
			"build":   "ignored",
		},
	}}

	if err := refresh(context.Background(), &store, src); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	snap := store.Snapshot()
	if !snap.HasStatus || !snap.Status.Compatible {
		t.Fatalf("HasStatus/Compatible = %v/%v, want true/true", snap.HasStatus, snap.Status.Compatible)
	}
	if snap.Status.CIPVersion != "9.0" {
		t.Fatalf("CIPVersion = %q, want 9.0", snap.Status.CIPVersion)
	}
	if got := snap.Status.Components["cumulus"]; got != "11.0.2" {
		t.Fatalf("Components[cumulus] = %q, want 11.0.2", got)
	}
	if _, ok := snap.Status.Components["build"]; ok {
		t.Fatalf("non-object entry became a component")
	}
}

func TestRefresh_FailuresGoOffline(t *testing.T) {
	var store state.Store
	src := fakeVersion{err: errors.New("dial tcp: connection refused")}

	for i := 0; i < 2; i++ {
		if err := refresh(context.Background(), &store, src); err == nil {
			t.Fatalf("refresh returned nil error")
		}
	}
	snap := store.Snapshot()
	if !snap.IsOffline() {
		t.Fatalf("IsOffline = false after %d failures", snap.ConsecutiveFailures)
	}
}

func TestRefresh_CancelledContextIsNotAFailure(t *testing.T) {
	var store state.Store
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = refresh(ctx, &store, fakeVersion{err: context.Canceled})
	if got := store.Snapshot().ConsecutiveFailures; got != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0", got)
	}
}

func TestStatusFromVersion_Incompatible(t *testing.T) {
	st := statusFromVersion(cip.Response{
		"version": map[string]any{"cip": map[string]any{"version": "8.6"}},
	})
	if st.Compatible {
		t.Fatalf("Compatible = true for CIP %s", st.CIPVersion)
	}
}
