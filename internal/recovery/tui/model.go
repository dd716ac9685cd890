// Package tui provides the Bubbletea front end for the account-recovery flow. Keystrokes become
// Controller transitions, the single outstanding request runs as a tea.Cmd, and its outcome comes
// back as a message that Finish resolves.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"content-portal/client/internal/recovery/domain"
	"content-portal/client/internal/recovery/service"
)

const inputWidth = 40

var fieldLabels = map[domain.Field]string{
	domain.FieldEmail:              "Email",
	domain.FieldVerifyCode:         "Verification code",
	domain.FieldNewPassword:        "New password",
	domain.FieldConfirmNewPassword: "Confirm new password",
}

// outcomeMsg carries the resolution of a dispatched request back to Update.
type outcomeMsg struct {
	req *domain.Request
	out domain.Outcome
}

// Model is the Bubbletea model for the recovery form.
type Model struct {
	ctx  context.Context
	ctrl *service.Controller

	inputs map[domain.Field]*textinput.Model
	focus  int
	state  domain.State

	keys KeyMap
	help help.Model

	completed bool
	signIn    bool
}

// New returns a form driving ctrl. ctx bounds the requests it dispatches. A non-empty email prefills the email field.
func New(ctx context.Context, ctrl *service.Controller, email string) *Model {
	m := &Model{
		ctx:    ctx,
		ctrl:   ctrl,
		inputs: make(map[domain.Field]*textinput.Model, 4),
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
	for _, f := range domain.AllFields() {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = inputWidth
		ti.CharLimit = 256
		if f.Secret() {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.inputs[f] = &ti
	}
	if email != "" {
		m.inputs[domain.FieldEmail].SetValue(email)
		ctrl.EditField(domain.FieldEmail, email)
	}
	m.state = ctrl.State()
	m.focusField(0)
	return m
}

// Completed reports whether the password was reset and control should pass to sign-in.
func (m *Model) Completed() bool {
	return m.completed
}

// ReturnedToSignIn reports whether the user abandoned the flow for the sign-in surface.
func (m *Model) ReturnedToSignIn() bool {
	return m.signIn
}

// State returns the last state snapshot the form rendered from.
func (m *Model) State() domain.State {
	return m.state
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.SetWindowTitle("Reset password"))
}

// Update handles key presses and request outcomes.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case outcomeMsg:
		return m.handleOutcome(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.ctrl.ReturnToSignIn()
			m.state = m.ctrl.State()
			m.signIn = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			return m, m.focusField(m.focus + 1)
		case key.Matches(msg, m.keys.Prev):
			return m, m.focusField(m.focus - 1)
		case key.Matches(msg, m.keys.Submit):
			return m, m.submit()
		}
	}
	return m, m.updateFocused(msg)
}

// submit starts the request for the active phase. While a request is in flight Enter is ignored.
func (m *Model) submit() tea.Cmd {
	req, err := m.ctrl.Begin()
	m.state = m.ctrl.State()
	switch {
	case errors.Is(err, service.ErrSubmitInFlight):
		return nil
	case errors.Is(err, service.ErrValidation):
		for i, f := range domain.PhaseFields(m.state.Phase) {
			if _, bad := m.state.FieldErrors[f]; bad {
				return m.focusField(i)
			}
		}
		return nil
	case err != nil:
		log.Printf("tui: submit: %v", err)
		return nil
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return outcomeMsg{req: req, out: ctrl.Dispatch(ctx, req)}
	}
}

func (m *Model) handleOutcome(msg outcomeMsg) (tea.Model, tea.Cmd) {
	prev := m.state.Phase
	res := m.ctrl.Finish(m.ctx, msg.req, msg.out)
	m.state = res.State
	log.Printf("tui: request %s resolved outcome=%s status=%d", msg.req.Kind, msg.out.Kind, msg.out.Status)
	if res.Completed {
		m.completed = true
		return m, tea.Quit
	}
	if m.state.Phase != prev {
		return m, m.focusField(0)
	}
	return m, nil
}

// updateFocused forwards msg to the focused input and records any value change with the controller.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	f, ok := m.focusedField()
	if !ok {
		return nil
	}
	ti := m.inputs[f]
	before := ti.Value()
	next, cmd := ti.Update(msg)
	*ti = next
	if v := ti.Value(); v != before {
		m.ctrl.EditField(f, v)
		m.state = m.ctrl.State()
	}
	return cmd
}

func (m *Model) focusedField() (domain.Field, bool) {
	fields := domain.PhaseFields(m.state.Phase)
	if m.focus < 0 || m.focus >= len(fields) {
		return "", false
	}
	return fields[m.focus], true
}

// focusField moves focus to index i of the active phase's fields, wrapping around.
func (m *Model) focusField(i int) tea.Cmd {
	fields := domain.PhaseFields(m.state.Phase)
	if len(fields) == 0 {
		return nil
	}
	m.focus = ((i % len(fields)) + len(fields)) % len(fields)
	for _, ti := range m.inputs {
		ti.Blur()
	}
	return m.inputs[fields[m.focus]].Focus()
}

// View renders the form for the active phase.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Reset your password"))
	b.WriteString("\n")
	switch m.state.Phase {
	case domain.PhaseAwaitingCodeAndPassword:
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Enter the code sent to %s and choose a new password.", m.state.CodeEmail)))
	default:
		b.WriteString(subtitleStyle.Render("Enter your account email to receive a verification code."))
	}
	b.WriteString("\n\n")

	for i, f := range domain.PhaseFields(m.state.Phase) {
		label := labelStyle
		if i == m.focus {
			label = focusedLabelStyle
		}
		b.WriteString(label.Render(fieldLabels[f]))
		b.WriteString("\n")
		b.WriteString(m.inputs[f].View())
		b.WriteString("\n")
		if msg, bad := m.state.FieldErrors[f]; bad {
			b.WriteString(fieldErrorStyle.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	switch {
	case m.state.Submitting:
		b.WriteString(pendingStyle.Render("sending…"))
		b.WriteString("\n")
	case m.state.Notice.Kind == domain.NoticeError:
		b.WriteString(errorNoticeStyle.Render(m.state.Notice.Message))
		b.WriteString("\n")
	case m.state.Notice.Kind == domain.NoticeInfo:
		b.WriteString(infoNoticeStyle.Render(m.state.Notice.Message))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
