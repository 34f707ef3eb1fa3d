package model

import "time"

// User represents a registered account.
//
// We use GitHub OAuth as the identity provider, so the primary external
// identifier is the GitHub user ID (an integer). We still generate our own
// internal string ID (xid) for consistency with Snippet and to avoid tying
// our primary keys to a third-party's numbering scheme.
//
// Email may be empty — GitHub only returns the primary public email when
// the user hasn't hidden it. An empty string is simpler to handle (and safe
// to display) than a nullable pointer.
type User struct {
	ID        string    `json:"id"        db:"id"`
	GitHubID  int64     `json:"githubId"  db:"github_id"`
	Login     string    `json:"login"     db:"login"`
	Email     string    `json:"email"     db:"email"`
	AvatarURL string    `json:"avatarUrl" db:"avatar_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Author is the public projection of a user returned by the author
// typeahead search. It deliberately omits email and timestamps.
type Author struct {
	ID        string `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
}
