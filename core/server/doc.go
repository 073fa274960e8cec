// Package server holds the HTTP server configuration and the system routes.
//
// The serve command exposes the identity cache over HTTP. This package
// defines its settings (listen port, API key, resolve request cap) and the
// routes every deployment gets without an API key: /health and the
// prometheus /metrics exporter.
package server
