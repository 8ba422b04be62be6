// Package http serves skill trees over a JSON API with server-sent change events.
package http
