// Package model defines the form draft edited by the builder and the answers
// collected when the form is filled out. FormState is persisted as a single
// JSON snapshot, so the JSON tags here are the storage format: there is no
// version field and any change to them breaks previously saved drafts.
//
// Question ids are opaque strings generated by the builder. They are unique
// within a form and never change once assigned. Changing a question's type
// replaces the whole record (see WithType) so type-specific settings such as
// min/max, options, or maxLength never leak across types.
package model
