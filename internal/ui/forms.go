package ui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// ErrUserBack is returned when the user asks for the previous step.
var ErrUserBack = errors.New("user navigated back")

// ErrCancelled is returned when the user aborts the run. Callers at
// the process boundary treat it as a clean exit, not a failure.
var ErrCancelled = errors.New("cancelled")

// interceptedKey tracks the last key that triggered an abort, so esc
// (back) and ctrl+c (cancel) can be told apart after the form exits.
var interceptedKey string

// formFilter is a Bubble Tea filter that records which abort key was
// pressed.
func formFilter(m tea.Model, msg tea.Msg) tea.Msg {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEsc:
			interceptedKey = "esc"
		case tea.KeyCtrlC:
			interceptedKey = "ctrl+c"
		}
	}
	return msg
}

// RunForm runs a huh form with the abort-key filter installed.
func RunForm(f *huh.Form) error {
	interceptedKey = ""
	return f.WithProgramOptions(tea.WithFilter(formFilter)).Run()
}

// HandleAbort maps a huh abort into the navigation sentinels: esc
// becomes ErrUserBack, ctrl+c becomes ErrCancelled. Other errors pass
// through unchanged.
func HandleAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		if interceptedKey == "ctrl+c" {
			return ErrCancelled
		}
		return ErrUserBack
	}
	return err
}

// cancelOnBack collapses back-navigation into cancellation for prompts
// that have no previous step.
func cancelOnBack(err error) error {
	if errors.Is(err, ErrUserBack) {
		return ErrCancelled
	}
	return err
}

// Theme returns the huh theme used by every prompt.
func Theme() *huh.Theme {
	return huh.ThemeCatppuccin()
}

// KeyMap returns the shared key map: esc goes back, ctrl+c quits.
func KeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()

	// Both keys surface as huh.ErrUserAborted; the tea filter records
	// which one was pressed.
	km.Quit.SetKeys("esc", "ctrl+c")
	km.Quit.SetHelp("ctrl+c", "quit")

	km.Select.Submit.SetHelp("enter", "choose • esc: back • ctrl+c: quit")
	km.Input.Next.SetHelp("enter", "next • esc: back • ctrl+c: quit")
	km.Input.Submit.SetHelp("enter", "submit • esc: back • ctrl+c: quit")
	km.Confirm.Submit.SetHelp("enter", "confirm • esc: back • ctrl+c: quit")

	return km
}
