package caselaw

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrecedentAPI struct {
	suggestErr  error
	suggestions []Suggestion
	searches    []string
}

func (f *fakePrecedentAPI) SuggestPrecedents(context.Context, string) ([]Suggestion, error) {
	return f.suggestions, f.suggestErr
}

func (f *fakePrecedentAPI) ListPrecedents(context.Context, string) ([]Bookmark, error) {
	return []Bookmark{{DocID: "1"}}, nil
}

func (f *fakePrecedentAPI) Search(_ context.Context, q string, page int) (*SearchPage, error) {
	f.searches = append(f.searches, q)
	return &SearchPage{Query: q, Page: page, Results: []SearchResult{{ID: "8", Title: "Hit"}}}, nil
}

func TestPrecedentPanelMissingEmbeddings(t *testing.T) {
	api := &fakePrecedentAPI{suggestErr: pkgerrors.Wrap(ErrMissingEmbeddings, "suggest precedents")}
	p := NewPrecedentPanel(api, "case-17")

	err := p.Mount(context.Background())
	require.Error(t, err)

	v := p.View()
	assert.Equal(t, SuggestMissingEmbeddings, v.State)
	assert.Equal(t, GuidanceMissingEmbeddings, v.Guidance)
	assert.Len(t, v.Linked, 1)

	api.suggestErr = errors.New("http 500")
	_ = p.Refresh(context.Background())
	v = p.View()
	assert.Equal(t, SuggestFailed, v.State)
	assert.Equal(t, GuidanceSuggestFailed, v.Guidance)
	assert.NotEqual(t, GuidanceMissingEmbeddings, v.Guidance)
}

func TestPrecedentPanelRerunQuery(t *testing.T) {
	api := &fakePrecedentAPI{suggestions: []Suggestion{
		{DocID: "3", Title: "A", Query: "anticipatory bail economic offences"},
		{DocID: "4", Title: "B"},
	}}
	p := NewPrecedentPanel(api, "case-17")
	require.NoError(t, p.Mount(context.Background()))
	assert.Equal(t, SuggestReady, p.View().State)

	res, err := p.Rerun(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "anticipatory bail economic offences", res.Query)
	assert.Equal(t, []string{"anticipatory bail economic offences"}, api.searches)
	assert.Equal(t, res, p.View().Results)

	_, err = p.Rerun(context.Background(), 1)
	assert.Error(t, err)
	_, err = p.Rerun(context.Background(), 5)
	assert.Error(t, err)
}
