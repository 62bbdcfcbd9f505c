// Package template defines the template engine seam used by the HTML views.
// The gotemplate subpackage provides the pongo2-backed implementation.
package template
