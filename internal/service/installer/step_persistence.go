package installer

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/zhipukit/pkg/env"
)

// SaveEnvStep merges the collected settings into <runtime>/.env and
// creates the outputs directory.
type SaveEnvStep struct {
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	path, err := Save(state)
	if err != nil {
		s.err = err
		return s, nil
	}
	state.SavedTo = path
	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// Save writes state to the runtime directory and returns the .env path.
func Save(state *InstallState) (string, error) {
	if err := os.MkdirAll(filepath.Join(state.RuntimePath, "outputs"), 0o755); err != nil {
		return "", fmt.Errorf("failed to create runtime directory: %w", err)
	}
	envPath := filepath.Join(state.RuntimePath, ".env")
	if err := env.WriteFile(envPath, &state.Config); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", envPath, err)
	}
	return envPath, nil
}
