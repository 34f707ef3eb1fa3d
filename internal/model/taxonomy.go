package model

// Identifiable is implemented by any record that exposes its identifier.
//
// The edit path needs to detect whether a snippet's category or tag list
// changed. Instead of reflecting over struct fields at runtime, each
// compared type provides its ID through this capability interface, and the
// comparison is a generic function resolved at compile time (see
// service.identitySequenceEqual).
type Identifiable interface {
	Identity() string
}

// Tag is a free-form label attached to snippets. Tags are user-extensible:
// the tag-add endpoint creates missing ones on the fly, and names are
// unique in the store.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Identity implements Identifiable.
func (t Tag) Identity() string { return t.ID }

// Category is a curated grouping for snippets. The category catalog is
// seeded at migration time and is not user-extensible.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Identity implements Identifiable.
func (c Category) Identity() string { return c.ID }

// ProgrammingLanguage is the language a snippet is written in.
// Each snippet references exactly one language; the catalog is seeded.
type ProgrammingLanguage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
