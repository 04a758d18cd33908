package caselaw

import (
	"context"
	"sync"

	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"github.com/pkg/errors"
)

type SuggestState int

const (
	SuggestIdle SuggestState = iota
	SuggestLoading
	SuggestReady
	SuggestMissingEmbeddings
	SuggestFailed
)

const (
	GuidanceMissingEmbeddings = "This case has no indexed documents yet, so suggestions are unavailable. Use manual search to find precedents."
	GuidanceSuggestFailed     = "Could not load suggestions right now. Try again later or search manually."
)

type PrecedentAPI interface {
	SuggestPrecedents(ctx context.Context, caseID string) ([]Suggestion, error)
	ListPrecedents(ctx context.Context, caseID string) ([]Bookmark, error)
	Search(ctx context.Context, query string, page int) (*SearchPage, error)
}

// PrecedentPanel drives the precedents view of one case: linked precedents,
// embedding suggestions and manual search.
type PrecedentPanel struct {
	api    PrecedentAPI
	caseID string

	mu          sync.Mutex
	state       SuggestState
	suggestions []Suggestion
	linked      []Bookmark
	results     *SearchPage
	lastQuery   string
	searchSeq   uint64
}

type PanelView struct {
	CaseID      string
	State       SuggestState
	Guidance    string
	Suggestions []Suggestion
	Linked      []Bookmark
	Query       string
	Results     *SearchPage
}

func NewPrecedentPanel(api PrecedentAPI, caseID string) *PrecedentPanel {
	return &PrecedentPanel{api: api, caseID: caseID}
}

// Mount loads linked precedents and requests suggestions. Only a suggestion
// failure is returned; a failed precedent listing is logged.
func (p *PrecedentPanel) Mount(ctx context.Context) error {
	if linked, err := p.api.ListPrecedents(ctx, p.caseID); err != nil {
		logger.Warn("caselaw: list precedents for case %s: %v", p.caseID, err)
	} else {
		p.mu.Lock()
		p.linked = linked
		p.mu.Unlock()
	}
	return p.Refresh(ctx)
}

// Refresh re-requests the suggestion set.
func (p *PrecedentPanel) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.state = SuggestLoading
	p.mu.Unlock()

	suggestions, err := p.api.SuggestPrecedents(ctx, p.caseID)

	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case errors.Is(err, ErrMissingEmbeddings):
		p.state = SuggestMissingEmbeddings
		p.suggestions = nil
	case err != nil:
		p.state = SuggestFailed
		p.suggestions = nil
		logger.Warn("caselaw: suggestions for case %s: %v", p.caseID, err)
	default:
		p.state = SuggestReady
		p.suggestions = suggestions
	}
	return err
}

// Search runs a manual search. Rerunning a suggestion's provenance query goes
// through here too.
func (p *PrecedentPanel) Search(ctx context.Context, query string, page int) (*SearchPage, error) {
	p.mu.Lock()
	p.searchSeq++
	seq := p.searchSeq
	p.lastQuery = query
	p.mu.Unlock()

	results, err := p.api.Search(ctx, query, page)
	if err != nil {
		return nil, errors.Wrapf(err, "search %q", query)
	}

	p.mu.Lock()
	if seq == p.searchSeq {
		p.results = results
	}
	p.mu.Unlock()
	return results, nil
}

// Rerun repeats the query that produced suggestion i as a manual search.
func (p *PrecedentPanel) Rerun(ctx context.Context, i int) (*SearchPage, error) {
	p.mu.Lock()
	if i < 0 || i >= len(p.suggestions) || p.suggestions[i].Query == "" {
		p.mu.Unlock()
		return nil, errors.Errorf("suggestion %d has no query", i)
	}
	query := p.suggestions[i].Query
	p.mu.Unlock()
	return p.Search(ctx, query, 0)
}

func (p *PrecedentPanel) View() PanelView {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := PanelView{
		CaseID:      p.caseID,
		State:       p.state,
		Suggestions: append([]Suggestion(nil), p.suggestions...),
		Linked:      append([]Bookmark(nil), p.linked...),
		Query:       p.lastQuery,
		Results:     p.results,
	}
	switch p.state {
	case SuggestMissingEmbeddings:
		v.Guidance = GuidanceMissingEmbeddings
	case SuggestFailed:
		v.Guidance = GuidanceSuggestFailed
	}
	return v
}
