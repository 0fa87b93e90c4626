package web

import "embed"

// TemplatesFS embeds the page and dashboard partial templates.
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the stylesheet and notification script.
//go:embed static/*
var StaticFS embed.FS
