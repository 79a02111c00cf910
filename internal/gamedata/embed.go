// Package gamedata holds authored case content and utilities for loading it.
package gamedata

import "embed"

// dataFS embeds the bundled case files at build time.
//
//go:embed *.json
var dataFS embed.FS
