package caselaw

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/apiclient"
	"github.com/pkg/errors"
)

// ProviderClient calls the upstream case-law provider. Bodies come back
// exactly as the provider sent them; rewriting happens in the portal service.
type ProviderClient struct {
	api *apiclient.Client
}

func NewProviderClient(baseURL, apiKey string) *ProviderClient {
	api := apiclient.New(baseURL)
	if apiKey != "" {
		api.Header = map[string]string{"Authorization": "Token " + apiKey}
	}
	return &ProviderClient{api: api}
}

// WithTimeout bounds each provider request when the caller's context has no
// earlier deadline.
func (c *ProviderClient) WithTimeout(d time.Duration) *ProviderClient {
	if d > 0 {
		c.api.Timeout = d
	}
	return c
}

type providerHit struct {
	TID         int    `json:"tid"`
	Title       string `json:"title"`
	DocSource   string `json:"docsource"`
	PublishDate string `json:"publishdate"`
	Headline    string `json:"headline"`
}

type providerRef struct {
	TID   int    `json:"tid"`
	Title string `json:"title"`
}

type providerDoc struct {
	TID   int    `json:"tid"`
	Title string `json:"title"`
	Doc   string `json:"doc"`
}

type providerMeta struct {
	TID         int           `json:"tid"`
	Title       string        `json:"title"`
	DocSource   string        `json:"docsource"`
	PublishDate string        `json:"publishdate"`
	Author      string        `json:"author"`
	Bench       []string      `json:"bench"`
	CiteList    []providerRef `json:"citeList"`
	CitedByList []providerRef `json:"citedbyList"`
}

func refs(in []providerRef) []DocRef {
	out := make([]DocRef, 0, len(in))
	for _, r := range in {
		out = append(out, DocRef{ID: strconv.Itoa(r.TID), Title: r.Title})
	}
	return out
}

func providerErr(err error, what string) error {
	if apiclient.HasStatus(err, http.StatusNotFound) {
		return errors.Wrap(ErrNotFound, what)
	}
	return errors.Wrap(err, what)
}

func (c *ProviderClient) Search(ctx context.Context, query string, page int) (*SearchPage, error) {
	var out struct {
		Total int           `json:"total"`
		Docs  []providerHit `json:"docs"`
	}
	q := url.Values{"formInput": {query}, "pagenum": {strconv.Itoa(page)}}
	if err := c.api.Get(ctx, "/search", q, &out); err != nil {
		return nil, providerErr(err, "provider search")
	}
	res := &SearchPage{Query: query, Page: page, Total: out.Total, Results: make([]SearchResult, 0, len(out.Docs))}
	for _, d := range out.Docs {
		res.Results = append(res.Results, SearchResult{
			ID:      strconv.Itoa(d.TID),
			Title:   d.Title,
			Court:   d.DocSource,
			Date:    d.PublishDate,
			Snippet: d.Headline,
		})
	}
	return res, nil
}

func (c *ProviderClient) Document(ctx context.Context, id string) (*Document, error) {
	var out providerDoc
	if err := c.api.Get(ctx, "/doc/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, providerErr(err, "provider document "+id)
	}
	return &Document{ID: id, Title: out.Title, HTML: out.Doc}, nil
}

func (c *ProviderClient) Meta(ctx context.Context, id string) (*DocMeta, error) {
	var out providerMeta
	if err := c.api.Get(ctx, "/docmeta/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, providerErr(err, "provider metadata "+id)
	}
	return &DocMeta{
		ID:        id,
		Title:     out.Title,
		Court:     out.DocSource,
		Date:      out.PublishDate,
		Author:    out.Author,
		Bench:     out.Bench,
		Citations: refs(out.CiteList),
		CitedBy:   refs(out.CitedByList),
	}, nil
}

// SuggestClient calls the embedding-based suggestion backend.
type SuggestClient struct {
	api *apiclient.Client
}

func NewSuggestClient(baseURL string) *SuggestClient {
	return &SuggestClient{api: apiclient.New(baseURL)}
}

// Suggest returns ErrMissingEmbeddings when the backend has not indexed the
// case yet (HTTP 422).
func (c *SuggestClient) Suggest(ctx context.Context, caseID string, limit int) ([]Suggestion, error) {
	var out struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	in := map[string]int{"limit": limit}
	err := c.api.Post(ctx, "/cases/"+url.PathEscape(strings.TrimSpace(caseID))+"/precedents/suggest", in, &out)
	switch {
	case apiclient.HasStatus(err, http.StatusUnprocessableEntity):
		return nil, errors.Wrapf(ErrMissingEmbeddings, "case %s", caseID)
	case err != nil:
		return nil, errors.Wrap(err, "suggest precedents")
	}
	return out.Suggestions, nil
}
