package service

import (
	"context"
	"strings"

	"github.com/harshmohite04/Firm-Connect-sub000/internal/cache"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/config"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/validation"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
)

const defaultSuggestLimit = 10

type CaseLawProvider interface {
	Search(ctx context.Context, query string, page int) (*caselaw.SearchPage, error)
	Document(ctx context.Context, id string) (*caselaw.Document, error)
	Meta(ctx context.Context, id string) (*caselaw.DocMeta, error)
}

type PrecedentSuggester interface {
	Suggest(ctx context.Context, caseID string, limit int) ([]caselaw.Suggestion, error)
}

// CaseLawService fronts the upstream provider: it rewrites document links,
// stamps attribution and caches responses in Redis.
type CaseLawService struct {
	provider    CaseLawProvider
	suggester   PrecedentSuggester
	docCache    *cache.DocumentCache
	origin      string
	attribution string
}

func NewCaseLawService(provider CaseLawProvider, suggester PrecedentSuggester, docCache *cache.DocumentCache, cfg config.CaseLawConfig) *CaseLawService {
	return &CaseLawService{
		provider:    provider,
		suggester:   suggester,
		docCache:    docCache,
		origin:      strings.TrimRight(cfg.SourceOrigin, "/"),
		attribution: cfg.Attribution,
	}
}

func (s *CaseLawService) Search(ctx context.Context, query string, page int) (*caselaw.SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" || page < 0 {
		return nil, ErrInvalidInput
	}
	return s.provider.Search(ctx, query, page)
}

func (s *CaseLawService) Document(ctx context.Context, id string) (*caselaw.Document, error) {
	if !validation.ValidDocID(id) {
		return nil, ErrInvalidInput
	}
	var cached caselaw.Document
	if s.docCache.GetDocument(id, &cached) {
		return &cached, nil
	}

	doc, err := s.provider.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.HTML = caselaw.RewriteLinks(doc.HTML, s.origin)
	doc.SourceURL = s.origin + "/doc/" + id + "/"
	doc.Attribution = s.attribution

	if err := s.docCache.SetDocument(id, doc); err != nil {
		logger.Debug("caselaw cache set doc %s: %v", id, err)
	}
	return doc, nil
}

func (s *CaseLawService) Meta(ctx context.Context, id string) (*caselaw.DocMeta, error) {
	if !validation.ValidDocID(id) {
		return nil, ErrInvalidInput
	}
	var cached caselaw.DocMeta
	if s.docCache.GetMeta(id, &cached) {
		return &cached, nil
	}

	meta, err := s.provider.Meta(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.docCache.SetMeta(id, meta); err != nil {
		logger.Debug("caselaw cache set meta %s: %v", id, err)
	}
	return meta, nil
}

// Suggest returns embedding-based precedent candidates for a case.
// ErrMissingEmbeddings passes through for the handler to map to 422.
func (s *CaseLawService) Suggest(ctx context.Context, caseID string, limit int) ([]caselaw.Suggestion, error) {
	if !validation.ValidCaseID(caseID) {
		return nil, ErrInvalidInput
	}
	if s.suggester == nil {
		return nil, ErrSuggestDisabled
	}
	if limit <= 0 || limit > 50 {
		limit = defaultSuggestLimit
	}
	suggestions, err := s.suggester.Suggest(ctx, caseID, limit)
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []caselaw.Suggestion{}
	}
	return suggestions, nil
}
