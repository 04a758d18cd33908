package caselaw

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/apiclient"
	"github.com/pkg/errors"
)

// PortalClient talks to the portal server's case-law endpoints. It satisfies
// Source, BookmarkAPI and PrecedentAPI.
type PortalClient struct {
	api *apiclient.Client
}

func NewPortalClient(api *apiclient.Client) *PortalClient {
	return &PortalClient{api: api}
}

// mapError turns portal status errors into the package sentinels.
func mapError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case apiclient.HasStatus(err, http.StatusNotFound):
		return errors.Wrap(ErrNotFound, what)
	case apiclient.HasStatus(err, http.StatusConflict):
		return errors.Wrap(ErrAlreadyBookmarked, what)
	case apiclient.HasStatus(err, http.StatusUnprocessableEntity) && apiclient.HasCode(err, "missing_embeddings"):
		return errors.Wrap(ErrMissingEmbeddings, what)
	default:
		return errors.Wrap(err, what)
	}
}

func (c *PortalClient) Search(ctx context.Context, query string, page int) (*SearchPage, error) {
	var out SearchPage
	q := url.Values{"q": {query}, "page": {strconv.Itoa(page)}}
	if err := c.api.Get(ctx, "/caselaw/search", q, &out); err != nil {
		return nil, mapError(err, "search")
	}
	return &out, nil
}

func (c *PortalClient) Document(ctx context.Context, id string) (*Document, error) {
	var out Document
	if err := c.api.Get(ctx, "/caselaw/docs/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, mapError(err, "document "+id)
	}
	return &out, nil
}

func (c *PortalClient) Meta(ctx context.Context, id string) (*DocMeta, error) {
	var out DocMeta
	if err := c.api.Get(ctx, "/caselaw/docs/"+url.PathEscape(id)+"/meta", nil, &out); err != nil {
		return nil, mapError(err, "metadata "+id)
	}
	return &out, nil
}

func (c *PortalClient) ListBookmarks(ctx context.Context) ([]Bookmark, error) {
	var out []Bookmark
	if err := c.api.Get(ctx, "/caselaw/bookmarks", nil, &out); err != nil {
		return nil, mapError(err, "list bookmarks")
	}
	return out, nil
}

func (c *PortalClient) CreateBookmark(ctx context.Context, in BookmarkInput) (*Bookmark, error) {
	var out Bookmark
	if err := c.api.Post(ctx, "/caselaw/bookmarks", in, &out); err != nil {
		return nil, mapError(err, "create bookmark")
	}
	return &out, nil
}

func (c *PortalClient) UpdateBookmark(ctx context.Context, docID string, upd BookmarkUpdate) (*Bookmark, error) {
	var out Bookmark
	if err := c.api.Put(ctx, "/caselaw/bookmarks/"+url.PathEscape(docID), upd, &out); err != nil {
		return nil, mapError(err, "update bookmark")
	}
	return &out, nil
}

func (c *PortalClient) DeleteBookmark(ctx context.Context, docID string) error {
	return mapError(c.api.Delete(ctx, "/caselaw/bookmarks/"+url.PathEscape(docID)), "delete bookmark")
}

func (c *PortalClient) ListPrecedents(ctx context.Context, caseID string) ([]Bookmark, error) {
	var out []Bookmark
	if err := c.api.Get(ctx, "/cases/"+url.PathEscape(caseID)+"/precedents", nil, &out); err != nil {
		return nil, mapError(err, "list precedents")
	}
	return out, nil
}

func (c *PortalClient) SuggestPrecedents(ctx context.Context, caseID string) ([]Suggestion, error) {
	var out struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := c.api.Post(ctx, "/cases/"+url.PathEscape(caseID)+"/precedents/suggest", struct{}{}, &out); err != nil {
		return nil, mapError(err, "suggest precedents")
	}
	return out.Suggestions, nil
}
