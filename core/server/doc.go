// Package server holds HTTP server configuration.
package server
