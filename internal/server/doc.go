// Package server exposes quiz sessions as a JSON HTTP API. Every browser
// gets its own session, identified by a cookie.
package server
