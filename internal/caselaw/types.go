// Package caselaw holds the case-law document navigator and the clients it
// runs on: the upstream provider client used by the portal server and the
// portal client used by front-ends.
package caselaw

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrAlreadyBookmarked = errors.New("already bookmarked")
	ErrMissingEmbeddings = errors.New("case has no embeddings yet")
)

// Document is a provider document after link rewriting. SourceURL and
// Attribution must be shown alongside the body.
type Document struct {
	ID          string `json:"id" msgpack:"id"`
	Title       string `json:"title" msgpack:"title"`
	HTML        string `json:"html" msgpack:"html"`
	SourceURL   string `json:"source_url" msgpack:"source_url"`
	Attribution string `json:"attribution" msgpack:"attribution"`
}

// DocRef is a citation edge to another document.
type DocRef struct {
	ID    string `json:"id" msgpack:"id"`
	Title string `json:"title" msgpack:"title"`
}

type DocMeta struct {
	ID        string   `json:"id" msgpack:"id"`
	Title     string   `json:"title" msgpack:"title"`
	Court     string   `json:"court" msgpack:"court"`
	Date      string   `json:"date" msgpack:"date"`
	Author    string   `json:"author,omitempty" msgpack:"author"`
	Bench     []string `json:"bench" msgpack:"bench"`
	Citations []DocRef `json:"citations" msgpack:"citations"`
	CitedBy   []DocRef `json:"cited_by" msgpack:"cited_by"`
}

type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Court   string `json:"court"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

type SearchPage struct {
	Query   string         `json:"query"`
	Page    int            `json:"page"`
	Total   int            `json:"total"`
	Results []SearchResult `json:"results"`
}

// Suggestion is an embedding-based precedent candidate. Query is the search
// string that produced it, when the backend reports one.
type Suggestion struct {
	DocID string  `json:"doc_id"`
	Title string  `json:"title"`
	Court string  `json:"court"`
	Date  string  `json:"date"`
	Score float64 `json:"score"`
	Query string  `json:"query,omitempty"`
}

// Bookmark mirrors the portal's bookmark resource.
type Bookmark struct {
	DocID       string    `json:"doc_id"`
	Title       string    `json:"title"`
	Court       string    `json:"court"`
	Date        string    `json:"date"`
	Tags        []string  `json:"tags"`
	Notes       string    `json:"notes"`
	CaseID      *string   `json:"case_id,omitempty"`
	HasSnapshot bool      `json:"has_snapshot"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BookmarkInput struct {
	DocID  string   `json:"doc_id"`
	Title  string   `json:"title"`
	Court  string   `json:"court"`
	Date   string   `json:"date"`
	Tags   []string `json:"tags"`
	Notes  string   `json:"notes"`
	CaseID *string  `json:"case_id,omitempty"`
}

// BookmarkUpdate leaves fields that are nil untouched.
type BookmarkUpdate struct {
	Notes  *string   `json:"notes,omitempty"`
	Tags   *[]string `json:"tags,omitempty"`
	CaseID *string   `json:"case_id,omitempty"`
}
