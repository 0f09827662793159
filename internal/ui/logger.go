package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var logger *log.Logger

// SetLogger injects the application logger into the UI package.
func SetLogger(l *log.Logger) {
	logger = l
}

// ConfigureLoggerStyles applies the lipgloss level styling to the
// injected logger.
func ConfigureLoggerStyles() {
	if logger == nil {
		return
	}
	styles := log.DefaultStyles()

	levels := map[log.Level]struct {
		label string
		color string
	}{
		log.DebugLevel: {"DEBUG", "63"},
		log.InfoLevel:  {"INFO ", "86"},
		log.WarnLevel:  {"WARN ", "192"},
		log.ErrorLevel: {"ERROR", "204"},
	}
	for level, s := range levels {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(s.label).
			Bold(true).
			Foreground(lipgloss.Color(s.color))
	}

	logger.SetStyles(styles)
}
