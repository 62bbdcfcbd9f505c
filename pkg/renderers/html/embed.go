package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// TemplatesFS returns the embedded preview templates.
func TemplatesFS() fs.FS {
	return templatesFS
}
