package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
)

// InputStep collects one text value. validate may reject the value, and
// skip may bypass the step entirely.
type InputStep struct {
	input    textinput.Model
	prompt   string
	hint     string
	err      error
	apply    func(state *InstallState, value string)
	validate func(value string) error
	skip     func(state *InstallState) bool
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Focus()
	ti.Placeholder = placeholder
	ti.CharLimit = 255
	ti.Width = 50
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}
	return ti
}

func NewAPIKeyStep() Step {
	return &InputStep{
		input:  newInput("id.secret", true),
		prompt: "Enter your API key",
		apply:  func(state *InstallState, v string) { state.Config.APIKey = v },
		validate: func(v string) error {
			if v == "" {
				return fmt.Errorf("api key is required")
			}
			return nil
		},
	}
}

func NewBaseURLStep() Step {
	return &InputStep{
		input:  newInput("https://example.com/api/paas/v4", false),
		prompt: "Enter the API base URL",
		apply:  func(state *InstallState, v string) { state.Config.BaseURL = v },
		validate: func(v string) error {
			if v == "" {
				return fmt.Errorf("base url is required")
			}
			_, _, err := zhipu.NormalizeBaseURL(v)
			return err
		},
		skip: func(state *InstallState) bool { return !state.CustomURL },
	}
}

func NewAgentIDStep() Step {
	return &InputStep{
		input:  newInput("general_translation", false),
		prompt: "Enter a default agent id",
		hint:   " (optional, press enter to skip)",
		apply:  func(state *InstallState, v string) { state.Config.AgentID = v },
	}
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.skip != nil && s.skip(state) {
		return nil, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		value := strings.TrimSpace(s.input.Value())
		if s.validate != nil {
			if err := s.validate(value); err != nil {
				s.err = err
				return s, nil
			}
		}
		s.apply(state, value)
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.err = nil
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s:\n\n%s\n\n", s.prompt, s.hint, s.input.View())
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	b.WriteString("(press enter to confirm)\n")
	return b.String()
}
