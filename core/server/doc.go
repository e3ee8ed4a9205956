// Package server holds the HTTP server configuration for the read-only stats API.
//
// The serve command owns the Fiber application itself; this package only defines
// the settings (port, API key, response cache lifetime) and their validation.
package server
