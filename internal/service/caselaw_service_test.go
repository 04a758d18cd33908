package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/config"
)

type stubProvider struct {
	docCalls int
}

func (p *stubProvider) Search(_ context.Context, q string, page int) (*caselaw.SearchPage, error) {
	return &caselaw.SearchPage{Query: q, Page: page}, nil
}

func (p *stubProvider) Document(_ context.Context, id string) (*caselaw.Document, error) {
	p.docCalls++
	if id == "404" {
		return nil, caselaw.ErrNotFound
	}
	return &caselaw.Document{ID: id, Title: "Maneka Gandhi", HTML: `<a href="/doc/1766147/">cited</a>`}, nil
}

func (p *stubProvider) Meta(_ context.Context, id string) (*caselaw.DocMeta, error) {
	return &caselaw.DocMeta{ID: id, Court: "Supreme Court of India"}, nil
}

type stubSuggester struct {
	err error
}

func (s stubSuggester) Suggest(_ context.Context, caseID string, limit int) ([]caselaw.Suggestion, error) {
	return nil, s.err
}

var testCaseLawConfig = config.CaseLawConfig{
	SourceOrigin: "https://indiankanoon.org/",
	Attribution:  config.DefaultAttribution,
}

func TestCaseLawDocumentRewritesAndAttributes(t *testing.T) {
	provider := &stubProvider{}
	svc := NewCaseLawService(provider, nil, nil, testCaseLawConfig)

	doc, err := svc.Document(context.Background(), "1766147")
	if err != nil {
		t.Fatalf("Document error: %v", err)
	}
	if !strings.Contains(doc.HTML, `href="https://indiankanoon.org/doc/1766147/"`) {
		t.Errorf("links not rewritten: %s", doc.HTML)
	}
	if doc.SourceURL != "https://indiankanoon.org/doc/1766147/" || doc.Attribution == "" {
		t.Errorf("attribution missing: %+v", doc)
	}

	if _, err := svc.Document(context.Background(), "1766147; DROP"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("invalid id error = %v", err)
	}
	if _, err := svc.Document(context.Background(), "404"); !errors.Is(err, caselaw.ErrNotFound) {
		t.Errorf("missing doc error = %v", err)
	}
}

func TestCaseLawSearchValidation(t *testing.T) {
	svc := NewCaseLawService(&stubProvider{}, nil, nil, testCaseLawConfig)
	if _, err := svc.Search(context.Background(), "  ", 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank query error = %v", err)
	}
	page, err := svc.Search(context.Background(), " right to privacy ", 2)
	if err != nil || page.Query != "right to privacy" || page.Page != 2 {
		t.Errorf("Search = (%+v, %v)", page, err)
	}
}

func TestCaseLawSuggest(t *testing.T) {
	ctx := context.Background()

	svc := NewCaseLawService(&stubProvider{}, nil, nil, testCaseLawConfig)
	if _, err := svc.Suggest(ctx, "case-1", 0); !errors.Is(err, ErrSuggestDisabled) {
		t.Errorf("unconfigured suggest error = %v", err)
	}

	svc = NewCaseLawService(&stubProvider{}, stubSuggester{err: caselaw.ErrMissingEmbeddings}, nil, testCaseLawConfig)
	if _, err := svc.Suggest(ctx, "case-1", 0); !errors.Is(err, ErrMissingEmbeddings) {
		t.Errorf("missing embeddings error = %v", err)
	}

	svc = NewCaseLawService(&stubProvider{}, stubSuggester{}, nil, testCaseLawConfig)
	got, err := svc.Suggest(ctx, "case-1", 0)
	if err != nil || got == nil {
		t.Errorf("Suggest = (%#v, %v), want empty non-nil slice", got, err)
	}
}
