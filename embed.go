package portfolio

import "embed"

// EmbeddedAssets contains static assets shipped with the server:
// chat.js (the chat widget and contact form) and site.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
