package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// Credentials asks for the account username and password. The password
// input suppresses echo. Aborting here cancels the run; there is no
// earlier step to go back to.
func Credentials(defaultUsername string) (string, string, error) {
	username := defaultUsername
	password := ""
	err := RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Plex.tv username").
				Value(&username).
				Validate(notEmpty("username")),
			huh.NewInput().
				Title("Plex.tv password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(notEmpty("password")),
		),
	).WithTheme(Theme()).WithKeyMap(KeyMap()))
	if err != nil {
		return "", "", cancelOnBack(HandleAbort(err))
	}
	return strings.TrimSpace(username), password, nil
}

// VerificationCode asks for the one-time second-factor code.
func VerificationCode() (string, error) {
	code := ""
	err := RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("2FA verification code").
				Description("Your account requires a verification code to sign in").
				Value(&code).
				Validate(notEmpty("code")),
		),
	).WithTheme(Theme()).WithKeyMap(KeyMap()))
	if err != nil {
		return "", cancelOnBack(HandleAbort(err))
	}
	return strings.TrimSpace(code), nil
}

// SelectServer asks which of the account's servers to connect to and
// returns its index.
func SelectServer(names []string) (int, error) {
	opts := make([]huh.Option[int], len(names))
	for i, name := range names {
		opts[i] = huh.NewOption(name, i)
	}

	idx := 0
	err := RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Select server").
				Description(fmt.Sprintf("%d servers available", len(names))).
				Options(opts...).
				Value(&idx),
		),
	).WithTheme(Theme()).WithKeyMap(KeyMap()))
	if err != nil {
		return 0, cancelOnBack(HandleAbort(err))
	}
	return idx, nil
}

// SelectLibrary asks which library section to process and returns its
// index. Esc returns ErrUserBack so the caller can reopen the server
// selection.
func SelectLibrary(serverName string, labels []string) (int, error) {
	opts := make([]huh.Option[int], len(labels))
	for i, label := range labels {
		opts[i] = huh.NewOption(label, i)
	}

	idx := 0
	err := RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(fmt.Sprintf("Select library from %s", serverName)).
				Options(opts...).
				Value(&idx),
		),
	).WithTheme(Theme()).WithKeyMap(KeyMap()))
	if err != nil {
		return 0, HandleAbort(err)
	}
	return idx, nil
}

// SelectRunMode asks whether to preview or apply changes, returning
// true for a dry run. The apply mode sits behind an explicit
// confirmation; declining falls back to a dry run.
func SelectRunMode() (bool, error) {
	choice := "dry"
	err := RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Run mode").
				Options(
					huh.NewOption("Dry run (preview only, no changes)", "dry"),
					huh.NewOption("Real run (actually update titles)", "real"),
				).
				Value(&choice),
		),
	).WithTheme(Theme()).WithKeyMap(KeyMap()))
	if err != nil {
		return false, cancelOnBack(HandleAbort(err))
	}
	if choice == "dry" {
		return true, nil
	}

	confirmed := false
	err = RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Are you sure you want to update titles?").
				Value(&confirmed),
		),
	).WithTheme(Theme()).WithKeyMap(KeyMap()))
	if err != nil {
		return false, cancelOnBack(HandleAbort(err))
	}
	if !confirmed {
		if logger != nil {
			logger.Info("Falling back to dry run.")
		}
		return true, nil
	}
	return false, nil
}

// TerminalPrompter satisfies the auth flow's Prompter interface with
// the huh forms above.
type TerminalPrompter struct{}

func (TerminalPrompter) Credentials(defaultUsername string) (string, string, error) {
	return Credentials(defaultUsername)
}

func (TerminalPrompter) VerificationCode() (string, error) {
	return VerificationCode()
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
