package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/msgsync"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/pkg/errors"
)

const listWidth = 30

func (m Model) View() string {
	switch m.screen {
	case screenChat:
		return m.chatView()
	case screenDoc:
		return m.docView()
	default:
		return m.loginView()
	}
}

func (m Model) footer(help string) string {
	var b strings.Builder
	switch {
	case m.err != "":
		b.WriteString(errorStyle.Render(m.err))
	case m.busy || m.loggingIn:
		b.WriteString(m.spinner.View() + statusStyle.Render(" Working..."))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("FirmConnect"))
	b.WriteString("\n")
	b.WriteString("Email\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\nPassword\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")
	b.WriteString(m.footer("tab: switch field • enter: sign in • ctrl+c: quit"))
	return b.String()
}

func (m Model) chatView() string {
	bodyHeight := max(m.height-6, 5)
	timelineWidth := max(m.width-listWidth-6, 20)

	left := paneStyle.Width(listWidth).Height(bodyHeight).Render(m.conversationsView(listWidth - 2))
	right := paneStyle.Width(timelineWidth).Height(bodyHeight).Render(m.timelineView(timelineWidth-2, bodyHeight))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" +
		m.footer("↑/↓: choose • enter: open / send • :doc ID, :search TEXT • :help • ctrl+c: quit")
}

func (m Model) conversationsView(width int) string {
	e := m.deps.Engine
	convs := e.Conversations()
	active := e.Active()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversations"))
	b.WriteString("\n")
	if len(convs) == 0 {
		b.WriteString(helpStyle.Render("No conversations yet"))
		return b.String()
	}
	for i, c := range convs {
		row := conversationRow(c, e.IsOnline(c.PeerID), c.PeerID == active, width)
		if i == m.cursor {
			row = selectedStyle.Render(row)
		} else {
			row = normalStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func conversationRow(c msgsync.Conversation, online, active bool, width int) string {
	marker := "  "
	if active {
		marker = "> "
	}
	dot := "○"
	if online {
		dot = onlineStyle.Render("●")
	}
	unread := ""
	if c.UnreadCount > 0 {
		unread = unreadStyle.Render(fmt.Sprintf(" (%d)", c.UnreadCount))
	}
	nameWidth := width - 4 - lipgloss.Width(unread)
	if nameWidth < 4 {
		nameWidth = 4
	}
	return marker + dot + " " + truncate.StringWithTail(c.DisplayName(), uint(nameWidth), "…") + unread
}

func (m Model) peerName(peerID uint) string {
	for _, c := range m.deps.Engine.Conversations() {
		if c.PeerID == peerID {
			return c.DisplayName()
		}
	}
	return fmt.Sprintf("user %d", peerID)
}

func (m Model) timelineView(width, height int) string {
	e := m.deps.Engine
	active := e.Active()
	if active == 0 {
		return helpStyle.Render("Pick a conversation on the left")
	}

	header := titleStyle.Render(m.peerName(active))
	if e.IsOnline(active) {
		header += onlineStyle.Render("  online")
	}
	for _, id := range e.Typing() {
		if id == active {
			header += helpStyle.Render("  typing...")
			break
		}
	}

	items := msgsync.Layout(e.Timeline(), e.Self(), m.deps.Location)
	lines := renderItems(items, m.peerName(active), width)
	body := tailLines(lines, height-6)

	return header + "\n" + body + "\n\n" + m.input.View()
}

// renderItems draws the laid-out timeline. Own messages are right aligned.
func renderItems(items []msgsync.Item, peer string, width int) string {
	bubble := width * 3 / 4
	var b strings.Builder
	for _, it := range items {
		if it.Kind == msgsync.ItemDateSeparator {
			b.WriteString(separatorStyle.Width(width).Render("── " + it.Date.Format("Mon, Jan 2 2006") + " ──"))
			b.WriteString("\n")
			continue
		}

		style := messageFromOtherStyle
		name := peer
		if it.Own {
			style = messageFromMeStyle
			name = "You"
		}
		if it.First {
			header := name + " · " + it.Message.CreatedAt.Format("15:04")
			b.WriteString(messageHeaderStyle.Width(width).Align(style.GetAlign()).Render(header))
			b.WriteString("\n")
		}
		b.WriteString(style.Width(width).Render(wordwrap.String(it.Message.Content, bubble)))
		b.WriteString("\n")
		if it.Last && it.Own && it.Message.IsRead {
			b.WriteString(helpStyle.Width(width).Align(lipgloss.Right).Render("read"))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// tailLines keeps the last n lines of s.
func tailLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func (m Model) docView() string {
	help := "↑/↓ pgup/pgdn: scroll • :open N • :back (esc) • :bm [CASE] • :notes TEXT • :tags A, B • :chat"
	if m.showResults {
		return m.resultsView() + "\n" + m.input.View() + "\n" + m.footer(":result N • esc: back to document • :chat")
	}

	view := m.deps.Navigator.View()
	var b strings.Builder
	title := view.Title
	if title == "" {
		title = "Document " + view.DocID
	}
	if m.deps.Bookmarks.IsBookmarked(view.DocID) {
		title += " ★"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	switch view.State {
	case caselaw.StateLoading:
		b.WriteString(m.spinner.View() + statusStyle.Render(" Loading document..."))
	case caselaw.StateError:
		if errors.Is(view.Err, caselaw.ErrNotFound) {
			b.WriteString(helpStyle.Render("Document not found"))
		} else {
			b.WriteString(errorStyle.Render("Could not load the document: " + view.Err.Error()))
		}
	case caselaw.StateReady:
		if meta := view.Meta; meta != nil {
			line := strings.TrimSpace(meta.Court + " · " + meta.Date)
			if len(meta.Bench) > 0 {
				line += " · " + strings.Join(meta.Bench, ", ")
			}
			b.WriteString(messageHeaderStyle.Render(line))
			b.WriteString("\n")
		}
		b.WriteString(m.doc.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(attribution(view.Doc)))
	default:
		b.WriteString(helpStyle.Render("Open a document with :doc ID or search with :search TEXT"))
	}
	if view.Depth > 0 {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("%d back", view.Depth)))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.footer(help))
	return b.String()
}

func attribution(doc *caselaw.Document) string {
	parts := make([]string, 0, 2)
	if doc.Attribution != "" {
		parts = append(parts, doc.Attribution)
	}
	if doc.SourceURL != "" {
		parts = append(parts, doc.SourceURL)
	}
	return strings.Join(parts, " · ")
}

func (m Model) resultsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.resultsFor))
	b.WriteString("\n")
	if len(m.results) == 0 {
		b.WriteString(helpStyle.Render("Nothing found"))
		return b.String()
	}
	width := max(m.width-6, 20)
	for i, r := range m.results {
		b.WriteString(selectedStyle.Render(fmt.Sprintf("%2d. ", i+1)))
		b.WriteString(normalStyle.Render(truncate.StringWithTail(r.Title, uint(width), "…")))
		b.WriteString("\n")
		meta := strings.Trim(strings.TrimSpace(r.Court+" · "+r.Date), "· ")
		if meta != "" {
			b.WriteString("    " + messageHeaderStyle.Render(meta) + "\n")
		}
		if r.Snippet != "" {
			b.WriteString("    " + helpStyle.Render(truncate.StringWithTail(r.Snippet, uint(width), "…")) + "\n")
		}
	}
	return b.String()
}
