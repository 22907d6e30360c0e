package prompt

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/waabox/devicegrant"
)

// TokenMsg carries the poll result into the model. It is exported so that
// tests can inject it directly into Model.Update.
type TokenMsg struct {
	Token devicegrant.Token
	Err   error
}

var codeStyle = lipgloss.NewStyle().Bold(true)

// Model is the Bubbletea model behind Run. It shows the verification URI and
// user code with a spinner until the poll callback delivers a TokenMsg.
type Model struct {
	session devicegrant.Session
	sp      spinner.Model
	poll    tea.Cmd
	cancel  context.CancelFunc

	token devicegrant.Token
	err   error
	done  bool
}

// NewModel creates a Model for session. poll runs on its own goroutine when
// the program starts; cancel is invoked when the user aborts, and must make
// poll return. Either may be nil, which is mainly useful in tests.
func NewModel(session devicegrant.Session, poll func() (devicegrant.Token, error), cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Model{session: session, sp: sp, cancel: cancel}
	if poll != nil {
		m.poll = func() tea.Msg {
			token, err := poll()
			return TokenMsg{Token: token, Err: err}
		}
	}
	return m
}

// Token returns the access token once the model is done.
func (m Model) Token() devicegrant.Token { return m.token }

// Err returns the terminal error once the model is done, nil on success.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.sp.Tick, m.poll)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TokenMsg:
		m.token = msg.Token
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// cancelling the poll context makes the pending poll deliver a
			// TokenMsg with the cancellation error, which quits cleanly
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	default:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd
	}
}

func (m Model) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("Authentication failed: %v\n", m.err)
		}
		return "Authentication successful!\n"
	}
	return fmt.Sprintf("Go to %s and enter code %s to authenticate.\n\n%s Waiting for authorization...\n",
		m.session.VerificationURI, codeStyle.Render(m.session.UserCode), m.sp.View())
}
