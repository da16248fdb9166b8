// Package app wires configuration, the CIP client, the keepalive poller and
// the UI into the cip command.
//
// # Startup
//
//  1. Load ~/.config/cip/config.toml (or -config) with environment overrides
//  2. Build a cip.Client with the configured timeout and DAM credentials
//  3. Open a session when open_session is set; it is closed on exit
//  4. Run the requested subcommand
//
// # Commands
//
//   - version: system/getversion
//   - catalogs: metadata/getcatalogs
//   - tables: metadata/gettables for the configured catalog
//   - layout: metadata/getlayout for the configured catalog and view
//   - search <query>: quick search, records keyed by field name
//   - fields <id>: one record, keyed by field name
//   - browse: the interactive catalog browser (default)
//
// One-shot commands print the processed response as indented JSON.
//
// # Keepalive
//
// While browsing, a background goroutine calls system/getversion at the poll
// interval (default 5 seconds) and records the result in a state.Store. After
// a failure the next call waits twice as long per consecutive failure, up to
// 30 seconds. The UI reads snapshots from the store once a second and shows
// the server as offline after two consecutive failures.
//
// # Logging
//
// Logging goes through logrus. debug = true in the config, or DEBUGGING=1,
// enables debug level, which logs every CIP call. The browser owns the
// terminal, so while it runs debug output is written to cip-debug.log in the
// temp dir and other output is discarded.
package app
