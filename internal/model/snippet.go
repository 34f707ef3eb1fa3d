// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Status is the publication state of a snippet.
//
// A draft is visible only to its author (MySnippets); a published snippet
// appears in the public listing. The value is stored as text in the DB, so
// new states can be added without a schema change.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is one of the known status tokens.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Snippet represents a stored code sample with its metadata.
//
// The Categories and Tags slices are the snippet's associations, loaded in
// their stored order. Order is display-only, but the edit path compares
// identifier sequences positionally to decide whether the link tables need
// rewriting, so repositories must preserve it.
//
// AuthorID is set once at creation and never changes; edit and delete are
// allowed only when the acting user's ID equals AuthorID.
type Snippet struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Code        string     `json:"code"`
	Status      Status     `json:"status"`
	AuthorID    string     `json:"authorId"`
	LanguageID  string     `json:"languageId"`
	Categories  []Category `json:"categories"`
	Tags        []Tag      `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
