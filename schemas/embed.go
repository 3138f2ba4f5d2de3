// Package schemas holds the JSON Schema documents for the pipeline's data contracts.
package schemas

import "embed"

// Files contains every *.schema.json document in this directory.
//
//go:embed *.schema.json
var Files embed.FS
