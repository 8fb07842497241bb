// Package web holds the embedded page templates and static assets served by
// the HTTP server.
package web

import "embed"

// TemplatesFS holds the page and partial templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the toast script.
//
//go:embed static/*
var StaticFS embed.FS
