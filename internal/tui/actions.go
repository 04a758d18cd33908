package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
	"github.com/pkg/errors"
)

func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	c, err := parseCommand(line)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""
	nav, portal, bookmarks := m.deps.Navigator, m.deps.Portal, m.deps.Bookmarks

	switch c.kind {
	case cmdDoc:
		return m.openDoc(c.arg)

	case cmdResult:
		if c.n > len(m.results) {
			m.err = "No such result"
			return m, nil
		}
		return m.openDoc(m.results[c.n-1].ID)

	case cmdOpen:
		if c.n > len(m.rendered.Links) {
			m.err = "No such link"
			return m, nil
		}
		href := m.rendered.Links[c.n-1]
		m.showResults = false
		return m, func() tea.Msg {
			ctx, cancel := timeout()
			defer cancel()
			action, err := nav.Click(ctx, href)
			if err != nil {
				return errMsg{err}
			}
			switch action.Kind {
			case caselaw.ActionOpenExternal:
				return statusMsg("Opened " + action.URL)
			case caselaw.ActionNone:
				return statusMsg("Nothing to open")
			}
			return nil
		}

	case cmdBack:
		m.showResults = false
		return m, func() tea.Msg {
			ctx, cancel := timeout()
			defer cancel()
			ok, err := nav.Back(ctx)
			if !ok {
				return leaveDocMsg{}
			}
			if err != nil {
				return errMsg{err}
			}
			return nil
		}

	case cmdSearch:
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			ctx, cancel := timeout()
			defer cancel()
			page, err := portal.Search(ctx, c.arg, 0)
			if err != nil {
				return errMsg{err}
			}
			return resultsMsg{title: "Search: " + c.arg, results: page.Results}
		})

	case cmdBookmark:
		view := nav.View()
		if view.State != caselaw.StateReady || view.Doc == nil {
			m.err = "No document open"
			return m, nil
		}
		in := caselaw.BookmarkInput{DocID: view.DocID, Title: view.Title}
		if view.Meta != nil {
			in.Court, in.Date = view.Meta.Court, view.Meta.Date
		}
		if c.arg != "" {
			caseID := c.arg
			in.CaseID = &caseID
		}
		return m, func() tea.Msg {
			ctx, cancel := timeout()
			defer cancel()
			on, err := bookmarks.Toggle(ctx, in)
			if err != nil {
				logger.Warn("tui: bookmark %s: %v", in.DocID, err)
				return errMsg{errors.New(caselaw.StatusMessage(err))}
			}
			if on {
				return statusMsg("Bookmarked")
			}
			return statusMsg("Bookmark removed")
		}

	case cmdNotes:
		docID := nav.View().DocID
		if docID == "" || !bookmarks.IsBookmarked(docID) {
			m.err = "Bookmark the document first"
			return m, nil
		}
		notes := c.arg
		return m, func() tea.Msg {
			ctx, cancel := timeout()
			defer cancel()
			if _, err := bookmarks.Update(ctx, docID, caselaw.BookmarkUpdate{Notes: &notes}); err != nil {
				return errMsg{errors.New(caselaw.StatusMessage(err))}
			}
			return statusMsg("Notes saved")
		}

	case cmdTags:
		docID := nav.View().DocID
		if docID == "" || !bookmarks.IsBookmarked(docID) {
			m.err = "Bookmark the document first"
			return m, nil
		}
		tags := splitTags(c.arg)
		return m, func() tea.Msg {
			ctx, cancel := timeout()
			defer cancel()
			if _, err := bookmarks.Update(ctx, docID, caselaw.BookmarkUpdate{Tags: &tags}); err != nil {
				return errMsg{errors.New(caselaw.StatusMessage(err))}
			}
			return statusMsg("Tags saved")
		}

	case cmdBookmarks:
		return m.Update(resultsMsg{title: "Bookmarks", results: bookmarkResults(bookmarks.List())})

	case cmdPrecedents:
		panel := caselaw.NewPrecedentPanel(portal, c.arg)
		m.panel = panel
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			ctx, cancel := timeout()
			defer cancel()
			// a suggestion failure still leaves linked precedents to show
			_ = panel.Mount(ctx)
			return panelResults(panel.View())
		})

	case cmdRerun:
		panel := m.panel
		if panel == nil {
			m.err = "Open a case with :precedents CASE first"
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			ctx, cancel := timeout()
			defer cancel()
			page, err := panel.Rerun(ctx, c.n-1)
			if err != nil {
				return errMsg{err}
			}
			return resultsMsg{title: "Search: " + page.Query, results: page.Results}
		})

	case cmdChat:
		m.screen = screenChat
		return m, nil

	case cmdRefresh:
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, m.connectCmd())

	case cmdLogout:
		sessions, api := m.deps.Sessions, m.deps.API
		return m, func() tea.Msg {
			ctx, cancel := timeout()
			defer cancel()
			if err := sessions.Logout(ctx, api); err != nil {
				logger.Warn("tui: logout: %v", err)
			}
			return loggedOutMsg{}
		}

	case cmdQuit:
		return m, tea.Quit

	case cmdHelp:
		m.status = commandHelp
	}
	return m, nil
}

func (m Model) openDoc(docID string) (tea.Model, tea.Cmd) {
	nav := m.deps.Navigator
	m.screen = screenDoc
	m.showResults = false
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		if err := nav.Open(ctx, strings.TrimSpace(docID)); err != nil {
			return errMsg{err}
		}
		return nil
	})
}

func bookmarkResults(list []caselaw.Bookmark) []caselaw.SearchResult {
	out := make([]caselaw.SearchResult, 0, len(list))
	for _, bm := range list {
		out = append(out, caselaw.SearchResult{ID: bm.DocID, Title: bm.Title, Court: bm.Court, Date: bm.Date, Snippet: bm.Notes})
	}
	return out
}

// panelResults lists suggestions first so :rerun N and :result N agree.
func panelResults(v caselaw.PanelView) resultsMsg {
	results := append(suggestionResults(v.Suggestions), bookmarkResults(v.Linked)...)
	return resultsMsg{
		title:    fmt.Sprintf("Case %s: %d suggested, %d linked", v.CaseID, len(v.Suggestions), len(v.Linked)),
		results:  results,
		guidance: v.Guidance,
	}
}

func suggestionResults(list []caselaw.Suggestion) []caselaw.SearchResult {
	out := make([]caselaw.SearchResult, 0, len(list))
	for _, s := range list {
		out = append(out, caselaw.SearchResult{ID: s.DocID, Title: s.Title, Court: s.Court, Date: s.Date, Snippet: s.Query})
	}
	return out
}
