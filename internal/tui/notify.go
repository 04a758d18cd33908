package tui

import tea "github.com/charmbracelet/bubbletea"

type changedMsg struct{}

type sessionEndedMsg struct {
	reason string
}

// Notifier carries state changes from the engine, the navigator and the
// session manager into the bubbletea loop. Change notifications coalesce.
type Notifier struct {
	changes chan struct{}
	ended   chan string
}

func NewNotifier() *Notifier {
	return &Notifier{
		changes: make(chan struct{}, 1),
		ended:   make(chan string, 4),
	}
}

// Changed asks for a redraw.
func (n *Notifier) Changed() {
	select {
	case n.changes <- struct{}{}:
	default:
	}
}

// SessionEnded sends the user back to the login screen with reason shown.
func (n *Notifier) SessionEnded(reason string) {
	select {
	case n.ended <- reason:
	default:
	}
}

func (n *Notifier) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-n.changes:
			return changedMsg{}
		case reason := <-n.ended:
			return sessionEndedMsg{reason: reason}
		}
	}
}
