// Package config loads the cip tool's TOML configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/cip/config.toml
//  3. If the file doesn't exist, fall back to defaults
//  4. CIP_SERVER, CIP_USER, CIP_PASSWORD and DEBUGGING override the result
//
// # TOML Format
//
//	server = "https://dam.example.org"
//	user = "web"
//	password = "secret"
//	server_address = "cumulus.local"   # Cumulus server behind CIP
//	catalog = "Photos"
//	view = "web"
//	table = "AssetRecords"
//	locale = "da"
//	timeout_seconds = 30
//	open_session = true
//	debug = false
//
// All fields are optional. Missing config files are not an error.
package config
