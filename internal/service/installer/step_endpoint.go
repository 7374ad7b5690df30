package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/zhipukit/internal/config"
)

type endpoint struct {
	title string
	url   string
}

// EndpointStep picks the vendor API endpoint.
type EndpointStep struct {
	choices []endpoint
	cursor  int
}

func NewEndpointStep() Step {
	return &EndpointStep{
		choices: []endpoint{
			{title: "BigModel (open.bigmodel.cn)", url: config.DefaultBaseURL},
			{title: "Z.ai (api.z.ai)", url: "https://api.z.ai/api/paas/v4"},
			{title: "Custom URL"},
		},
	}
}

func (s *EndpointStep) Init() tea.Cmd {
	return nil
}

func (s *EndpointStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.choices)-1 {
			s.cursor++
		}
	case "enter":
		choice := s.choices[s.cursor]
		state.CustomURL = choice.url == ""
		if choice.url != config.DefaultBaseURL {
			state.Config.BaseURL = choice.url
		}
		return nil, nil
	}
	return s, nil
}

func (s *EndpointStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Select the API endpoint:\n\n")
	for i, choice := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("> %s", choice.title)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", choice.title)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
