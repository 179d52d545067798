// Package http contains the HTTP handlers for the sales dashboard API.
//
// Handlers are thin: they parse and validate query parameters, call the
// data service, and render either a success envelope or an RFC 7807
// problem via the central error handler.
package http
