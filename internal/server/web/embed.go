// Package web embeds the single-page roster UI.
package web

import _ "embed"

// IndexHTML is the co-author form and roster list page.
//
//go:embed index.html
var IndexHTML []byte
