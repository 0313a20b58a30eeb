package inkpress

import "embed"

// EmbeddedAssets contains static assets shipped with the engine:
// metrics.js, the analytics beacon script.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
