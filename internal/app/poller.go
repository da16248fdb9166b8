package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NationalMuseumofDenmark/cip-go/cip"
	"github.com/NationalMuseumofDenmark/cip-go/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

var pollLog = logrus.WithField("source", "poller")

// versionSource is the keepalive call. *cip.SystemService implements it.
type versionSource interface {
	GetVersion(ctx context.Context) (cip.Response, error)
}

// StartPoller launches a background goroutine that pings the server at a
// fixed cadence, backing off while it fails. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, src versionSource, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		for {
			if err := refresh(ctx, store, src); err != nil {
				failures++
			} else {
				failures = 0
			}

			wait := interval
			if failures > 0 {
				wait = calculateBackoff(failures, interval)
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// calculateBackoff doubles base once per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

func refresh(ctx context.Context, store *state.Store, src versionSource) error {
	resp, err := src.GetVersion(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		store.Update(nil, err)
		pollLog.WithError(err).Warn("keepalive failed")
		return err
	}
	status := statusFromVersion(resp)
	store.Update(&status, nil)
	pollLog.WithField("cip", status.CIPVersion).Debug("keepalive ok")
	return nil
}

// statusFromVersion reads a system/getversion response:
//
//	{"version": {"cip": {"version": "9.0"}, "cumulus": {"version": "11.0.2"}}}
func statusFromVersion(resp cip.Response) state.ServerStatus {
	components := make(map[string]string)
	for name, raw := range resp.Object("version") {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if v := cip.Response(obj).String("version"); v != "" {
			components[name] = v
		}
	}
	version := cip.CIPVersion(resp)
	return state.ServerStatus{
		CIPVersion: version,
		Components: components,
		Compatible: version == cip.ServerVersion,
	}
}
