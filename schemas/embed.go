// Package schemas embeds the JSON Schema documents shipped with the analyzer.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
