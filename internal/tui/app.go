// Package tui is the terminal portal: sign-in, direct messages and the
// case-law document viewer on one bubbletea program.
package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/apiclient"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/msgsync"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/session"
)

const requestTimeout = 15 * time.Second

type screen int

const (
	screenLogin screen = iota
	screenChat
	screenDoc
)

// Deps are the long-lived client components the views drive.
type Deps struct {
	Engine    *msgsync.Engine
	Sessions  *session.Manager
	API       *apiclient.Client
	Portal    *caselaw.PortalClient
	Navigator *caselaw.Navigator
	Bookmarks *caselaw.Bookmarks
	Notifier  *Notifier
	Location  *time.Location
}

type loggedInMsg struct{}

type loginFailedMsg struct {
	err error
}

type loggedOutMsg struct{}

type errMsg struct {
	err error
}

type statusMsg string

type sentMsg struct{}

type leaveDocMsg struct{}

type resultsMsg struct {
	title    string
	results  []caselaw.SearchResult
	guidance string
}

type Model struct {
	deps   Deps
	screen screen
	width  int
	height int

	email      textinput.Model
	password   textinput.Model
	loginFocus int
	loggingIn  bool

	input  textinput.Model
	cursor int

	doc         viewport.Model
	rendered    Rendered
	renderedFor string
	results     []caselaw.SearchResult
	resultsFor  string
	showResults bool
	panel       *caselaw.PrecedentPanel

	spinner spinner.Model
	busy    bool
	status  string
	err     string
}

func NewModel(deps Deps) Model {
	if deps.Location == nil {
		deps.Location = time.Local
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	input := textinput.New()
	input.Placeholder = "Type a message, or :help"
	input.CharLimit = 4000

	m := Model{
		deps:     deps,
		email:    email,
		password: password,
		input:    input,
		doc:      viewport.New(80, 20),
		spinner:  s,
		width:    80,
		height:   30,
	}
	if deps.Sessions.Current() != nil {
		m.screen = screenChat
		m.busy = true
		m.input.Focus()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.deps.Notifier.wait()}
	if m.screen != screenLogin {
		cmds = append(cmds, m.spinner.Tick, m.connectCmd())
	}
	return tea.Batch(cmds...)
}

func timeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (m Model) connectCmd() tea.Cmd {
	engine, sessions, bookmarks := m.deps.Engine, m.deps.Sessions, m.deps.Bookmarks
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		if err := engine.Connect(ctx, sessions.UserID()); err != nil {
			return errMsg{err}
		}
		if err := engine.LoadConversations(ctx); err != nil {
			return errMsg{err}
		}
		if err := bookmarks.Load(ctx); err != nil {
			return errMsg{err}
		}
		return statusMsg("Connected")
	}
}

func (m Model) loginCmd() tea.Cmd {
	sessions, api := m.deps.Sessions, m.deps.API
	email, password := strings.TrimSpace(m.email.Value()), m.password.Value()
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		if _, err := sessions.Login(ctx, api, email, password); err != nil {
			return loginFailedMsg{err}
		}
		return loggedInMsg{}
	}
}

func (m Model) disconnectCmd() tea.Cmd {
	engine := m.deps.Engine
	return func() tea.Msg {
		_ = engine.Connect(context.Background(), 0)
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refreshDoc()
		return m, nil

	case changedMsg:
		m.refreshDoc()
		return m, m.deps.Notifier.wait()

	case sessionEndedMsg:
		m.toLogin(msg.reason)
		return m, tea.Batch(m.deps.Notifier.wait(), m.disconnectCmd())

	case loggedOutMsg:
		m.toLogin("")
		m.status = "Signed out"
		return m, m.disconnectCmd()

	case loggedInMsg:
		m.loggingIn = false
		m.busy = true
		m.err = ""
		m.password.Reset()
		m.screen = screenChat
		m.input.Focus()
		return m, tea.Batch(m.spinner.Tick, m.connectCmd())

	case loginFailedMsg:
		m.loggingIn = false
		m.err = loginError(msg.err)
		return m, nil

	case errMsg:
		m.busy = false
		m.err = msg.err.Error()
		return m, nil

	case statusMsg:
		m.busy = false
		m.err = ""
		m.status = string(msg)
		return m, nil

	case sentMsg:
		m.input.Reset()
		m.err = ""
		return m, nil

	case leaveDocMsg:
		m.screen = screenChat
		return m, nil

	case resultsMsg:
		m.busy = false
		m.err = ""
		m.results = msg.results
		m.resultsFor = msg.title
		m.status = msg.guidance
		m.showResults = true
		m.screen = screenDoc
		return m, nil

	case spinner.TickMsg:
		if m.busy || m.loggingIn {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenLogin:
			return m.updateLogin(msg)
		case screenChat:
			return m.updateChat(msg)
		case screenDoc:
			return m.updateDoc(msg)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func loginError(err error) string {
	if apiclient.HasStatus(err, 401) {
		return "Invalid email or password"
	}
	return err.Error()
}

func (m *Model) toLogin(reason string) {
	m.screen = screenLogin
	m.busy = false
	m.loggingIn = false
	m.status = ""
	m.err = reason
	m.cursor = 0
	m.results = nil
	m.panel = nil
	m.showResults = false
	m.renderedFor = ""
	m.input.Reset()
	m.input.Blur()
	m.password.Reset()
	m.loginFocus = 0
	m.email.Focus()
	m.password.Blur()
}

func (m *Model) resize() {
	m.input.Width = max(m.width-listWidth-10, 20)
	m.doc.Width = max(m.width-4, 20)
	m.doc.Height = max(m.height-10, 5)
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loggingIn {
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.focusLogin(1 - m.loginFocus)
		return m, nil
	case "enter":
		if m.loginFocus == 0 && m.password.Value() == "" {
			m.focusLogin(1)
			return m, nil
		}
		if strings.TrimSpace(m.email.Value()) == "" || m.password.Value() == "" {
			m.err = "Email and password are required"
			return m, nil
		}
		m.loggingIn = true
		m.err = ""
		return m, tea.Batch(m.spinner.Tick, m.loginCmd())
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) focusLogin(i int) {
	m.loginFocus = i
	if i == 0 {
		m.email.Focus()
		m.password.Blur()
	} else {
		m.password.Focus()
		m.email.Blur()
	}
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	convs := m.deps.Engine.Conversations()
	switch msg.String() {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down":
		if m.cursor < len(convs)-1 {
			m.cursor++
		}
		return m, nil
	case "esc":
		m.input.Reset()
		return m, nil
	case "enter":
		line := m.input.Value()
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), ":"):
			m.input.Reset()
			return m.runCommand(line)
		case strings.TrimSpace(line) == "":
			if m.cursor < len(convs) {
				m.status = ""
				return m, m.selectCmd(convs[m.cursor].PeerID)
			}
			return m, nil
		case m.deps.Engine.Active() == 0:
			m.err = "Select a conversation first"
			return m, nil
		default:
			return m, m.sendCmd(line)
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before && v != "" && !strings.HasPrefix(v, ":") {
		m.deps.Engine.Input(v)
	}
	return m, cmd
}

func (m Model) selectCmd(peerID uint) tea.Cmd {
	engine := m.deps.Engine
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		if err := engine.SelectConversation(ctx, peerID); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	engine := m.deps.Engine
	return func() tea.Msg {
		ctx, cancel := timeout()
		defer cancel()
		if err := engine.Send(ctx, text); err != nil {
			return errMsg{err}
		}
		return sentMsg{}
	}
}

func (m Model) updateDoc(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.showResults && m.deps.Navigator.View().DocID != "" {
			m.showResults = false
			return m, nil
		}
		return m.runCommand(":back")
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.doc, cmd = m.doc.Update(msg)
		return m, cmd
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		switch {
		case line == "":
			return m, nil
		case strings.HasPrefix(line, ":"):
			return m.runCommand(line)
		default:
			return m.runCommand(":search " + line)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refreshDoc re-renders the open document when it or the width changed.
func (m *Model) refreshDoc() {
	view := m.deps.Navigator.View()
	if view.State == caselaw.StateLoading {
		return
	}
	if m.screen == screenDoc {
		m.busy = false
	}
	if view.State != caselaw.StateReady || view.Doc == nil {
		return
	}
	key := view.DocID + "@" + strconv.Itoa(m.doc.Width)
	if key == m.renderedFor {
		return
	}
	m.rendered = RenderHTML(view.Doc.HTML, m.doc.Width)
	m.doc.SetContent(m.rendered.Text)
	m.doc.GotoTop()
	m.renderedFor = key
}
