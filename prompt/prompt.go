// Package prompt presents a device authorization session to the user: either
// as plain text on a writer, or as an interactive terminal prompt with a
// spinner that waits for the authorization to complete.
package prompt

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/waabox/devicegrant"
)

// WriterPresenter writes the verification instructions as plain text.
// Suitable for non-interactive environments and for piping; point W at
// stderr to keep stdout clean.
type WriterPresenter struct {
	W io.Writer
}

func (p WriterPresenter) ShowSession(s devicegrant.Session) {
	fmt.Fprintf(p.W, "Visit:      %s\n", s.VerificationURI)
	fmt.Fprintf(p.W, "Enter code: %s\n", s.UserCode)
	fmt.Fprintf(p.W, "Waiting for authorization...\n")
}

// Run drives the whole flow interactively: it requests a device code, shows
// the verification instructions with a spinner while polling in the
// background, and returns the token once the user approves. Ctrl+C or Esc
// aborts the poll and surfaces the cancellation as an error.
//
// The prompt renders on stderr so stdout stays clean for piping.
func Run(ctx context.Context, flow *devicegrant.Flow) (devicegrant.Token, error) {
	session, err := flow.RequestCode(ctx)
	if err != nil {
		return devicegrant.Token{}, err
	}

	pollCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewModel(session, func() (devicegrant.Token, error) {
		return flow.PollToken(pollCtx)
	}, cancel)

	final, err := tea.NewProgram(m, tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return devicegrant.Token{}, fmt.Errorf("running prompt: %w", err)
	}
	result := final.(Model)
	return result.Token(), result.Err()
}
