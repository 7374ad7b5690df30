// Package ui holds terminal styles and result renderers for the CLI.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// ANSI 6 (cyan) reads well on light and dark terminals.
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// ANSI 8 (gray) keeps descriptions quieter than names.
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	ScoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	WarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)
