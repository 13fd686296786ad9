package main

import "github.com/charmbracelet/lipgloss"

// Colors shared by every obsview style.
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorDanger    = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorMuted     = lipgloss.Color("#6B7280")
	colorBorder    = lipgloss.Color("#374151")
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorPrimary).
			Padding(0, 2)

	statusConnected = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
	statusWaiting   = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	statusError     = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)

	askStyle = lipgloss.NewStyle().Foreground(colorDanger)
	bidStyle = lipgloss.NewStyle().Foreground(colorSecondary)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder())

	tableCellStyle = lipgloss.NewStyle().Padding(0, 1)

	helpStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
)
