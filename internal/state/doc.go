// Package state shares the CIP server status between the keepalive poller
// and the catalog browser.
//
// The poller is the single writer; the UI reads copies on its own tick:
//
//	store := &state.Store{}
//	store.Update(&state.ServerStatus{CIPVersion: "9.0"}, nil) // poller
//	snap := store.Snapshot()                                  // UI
//
// A failed poll keeps the last good status, records the error and counts
// consecutive failures; Snapshot.IsOffline reports two or more in a row.
// The zero Store is ready to use.
package state
