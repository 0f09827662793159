package auth

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/mydehq/plextitler/internal/catalog"
	"github.com/mydehq/plextitler/internal/creds"
	"github.com/mydehq/plextitler/internal/ui"
)

type fakeAccount struct {
	username string
	token    string
}

func (a *fakeAccount) Username() string { return a.username }
func (a *fakeAccount) Token() string    { return a.token }
func (a *fakeAccount) Servers(ctx context.Context) ([]catalog.ServerRef, error) {
	return nil, nil
}

type signInCall struct {
	username string
	password string
	code     string
}

// fakeService scripts the catalog's responses per call.
type fakeService struct {
	fromToken    func(token string) (catalog.Account, error)
	signInErrs   []error // consumed in order; nil means success
	signInResult catalog.Account
	signIns      []signInCall
	tokenChecks  []string
}

func (s *fakeService) AccountFromToken(ctx context.Context, token string) (catalog.Account, error) {
	s.tokenChecks = append(s.tokenChecks, token)
	if s.fromToken == nil {
		return nil, errors.New("unexpected token check")
	}
	return s.fromToken(token)
}

func (s *fakeService) SignIn(ctx context.Context, username, password, code string) (catalog.Account, error) {
	s.signIns = append(s.signIns, signInCall{username, password, code})
	if len(s.signInErrs) > 0 {
		err := s.signInErrs[0]
		s.signInErrs = s.signInErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if s.signInResult == nil {
		return nil, errors.New("no account scripted")
	}
	return s.signInResult, nil
}

type fakePrompter struct {
	username  string
	password  string
	code      string
	credErr   error
	codeErr   error
	credCalls int
	codeCalls int
}

func (p *fakePrompter) Credentials(defaultUsername string) (string, string, error) {
	p.credCalls++
	if p.credErr != nil {
		return "", "", p.credErr
	}
	return p.username, p.password, nil
}

func (p *fakePrompter) VerificationCode() (string, error) {
	p.codeCalls++
	if p.codeErr != nil {
		return "", p.codeErr
	}
	return p.code, nil
}

func newTestFlow(t *testing.T, svc *fakeService, prompt *fakePrompter) (*Flow, *creds.Store) {
	t.Helper()
	t.Setenv("PLEX_USERNAME", "")
	t.Setenv("PLEX_PASSWORD", "")
	store := creds.New(filepath.Join(t.TempDir(), "creds.json"))
	return &Flow{
		Store:   store,
		Service: svc,
		Prompt:  prompt,
		Log:     log.New(io.Discard),
	}, store
}

func TestLoginCachedTokenSuccess(t *testing.T) {
	svc := &fakeService{
		fromToken: func(token string) (catalog.Account, error) {
			if token != "cached-tok" {
				t.Errorf("token check with %q, want cached-tok", token)
			}
			return &fakeAccount{username: "alice", token: "cached-tok"}, nil
		},
	}
	prompt := &fakePrompter{}
	flow, store := newTestFlow(t, svc, prompt)
	if err := store.Save("cached-tok"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	account, err := flow.Login(context.Background())
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if account.Username() != "alice" {
		t.Errorf("Username = %q", account.Username())
	}
	if prompt.credCalls != 0 || prompt.codeCalls != 0 {
		t.Error("prompter must not be consulted on the cached path")
	}
	if len(svc.signIns) != 0 {
		t.Error("no password sign-in expected on the cached path")
	}
	if tok, ok := store.Load(); !ok || tok != "cached-tok" {
		t.Errorf("store after login = (%q, %v)", tok, ok)
	}
}

func TestLoginRejectedCacheFallsBackToPrompt(t *testing.T) {
	svc := &fakeService{
		fromToken: func(string) (catalog.Account, error) {
			return nil, &catalog.AuthError{Code: 401, Message: "token expired"}
		},
		signInResult: &fakeAccount{username: "alice", token: "fresh-tok"},
	}
	prompt := &fakePrompter{username: "alice", password: "hunter2"}
	flow, store := newTestFlow(t, svc, prompt)
	if err := store.Save("stale-tok"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	account, err := flow.Login(context.Background())
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if account.Token() != "fresh-tok" {
		t.Errorf("Token = %q", account.Token())
	}
	if prompt.credCalls != 1 {
		t.Errorf("credCalls = %d, want 1", prompt.credCalls)
	}
	if len(svc.signIns) != 1 || svc.signIns[0].username != "alice" || svc.signIns[0].password != "hunter2" {
		t.Errorf("signIns = %+v", svc.signIns)
	}
	// The stale record is replaced, not left behind.
	if tok, ok := store.Load(); !ok || tok != "fresh-tok" {
		t.Errorf("store after login = (%q, %v), want fresh-tok", tok, ok)
	}
}

func TestLoginCacheNonRejectionIsFatal(t *testing.T) {
	netErr := errors.New("connection refused")
	svc := &fakeService{
		fromToken: func(string) (catalog.Account, error) { return nil, netErr },
	}
	prompt := &fakePrompter{}
	flow, store := newTestFlow(t, svc, prompt)
	if err := store.Save("cached-tok"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	_, err := flow.Login(context.Background())
	if !errors.Is(err, netErr) {
		t.Fatalf("Login error = %v, want the transport failure", err)
	}
	if prompt.credCalls != 0 {
		t.Error("non-rejection failures must not trigger re-authentication")
	}
	// Only a rejection clears the cache.
	if _, ok := store.Load(); !ok {
		t.Error("cached token should survive a transport failure")
	}
}

func TestLoginTwoFactorChallenge(t *testing.T) {
	svc := &fakeService{
		signInErrs:   []error{&catalog.AuthError{Code: 1029, Message: "please enter the verification code"}, nil},
		signInResult: &fakeAccount{username: "alice", token: "tok-2fa"},
	}
	prompt := &fakePrompter{username: "alice", password: "hunter2", code: "123456"}
	flow, store := newTestFlow(t, svc, prompt)

	account, err := flow.Login(context.Background())
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if account.Token() != "tok-2fa" {
		t.Errorf("Token = %q", account.Token())
	}
	if prompt.codeCalls != 1 {
		t.Errorf("codeCalls = %d, want 1", prompt.codeCalls)
	}
	if len(svc.signIns) != 2 {
		t.Fatalf("signIns = %d, want 2", len(svc.signIns))
	}
	if svc.signIns[0].code != "" {
		t.Errorf("first attempt carried code %q", svc.signIns[0].code)
	}
	if svc.signIns[1].code != "123456" {
		t.Errorf("retry code = %q, want 123456", svc.signIns[1].code)
	}
	if tok, ok := store.Load(); !ok || tok != "tok-2fa" {
		t.Errorf("store after login = (%q, %v)", tok, ok)
	}
}

func TestLoginTwoFactorByMessageFallback(t *testing.T) {
	svc := &fakeService{
		signInErrs:   []error{&catalog.AuthError{Message: "Please enter the verification code"}, nil},
		signInResult: &fakeAccount{username: "alice", token: "tok"},
	}
	prompt := &fakePrompter{username: "alice", password: "pw", code: "000000"}
	flow, _ := newTestFlow(t, svc, prompt)

	if _, err := flow.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if prompt.codeCalls != 1 {
		t.Errorf("codeCalls = %d, want 1", prompt.codeCalls)
	}
}

func TestLoginOtherRejectionIsFatal(t *testing.T) {
	svc := &fakeService{
		signInErrs: []error{&catalog.AuthError{Message: "invalid email or password"}},
	}
	prompt := &fakePrompter{username: "alice", password: "wrong"}
	flow, _ := newTestFlow(t, svc, prompt)

	_, err := flow.Login(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !catalog.IsAuthRejected(err) {
		t.Errorf("error = %v, want the rejection propagated", err)
	}
	if prompt.codeCalls != 0 {
		t.Error("plain rejection must not trigger the code prompt")
	}
}

func TestLoginCallerCredentialsSkipPrompt(t *testing.T) {
	svc := &fakeService{signInResult: &fakeAccount{username: "bob", token: "tok"}}
	prompt := &fakePrompter{}
	flow, _ := newTestFlow(t, svc, prompt)
	flow.Username = "bob"
	flow.Password = "secret"

	if _, err := flow.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if prompt.credCalls != 0 {
		t.Error("caller-supplied credentials must skip prompting")
	}
	if svc.signIns[0].username != "bob" || svc.signIns[0].password != "secret" {
		t.Errorf("signIns[0] = %+v", svc.signIns[0])
	}
}

func TestLoginEnvironmentDefaults(t *testing.T) {
	svc := &fakeService{signInResult: &fakeAccount{username: "carol", token: "tok"}}
	prompt := &fakePrompter{}
	flow, _ := newTestFlow(t, svc, prompt)
	t.Setenv("PLEX_USERNAME", "carol")
	t.Setenv("PLEX_PASSWORD", "env-secret")

	if _, err := flow.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if prompt.credCalls != 0 {
		t.Error("environment defaults must skip prompting")
	}
	if svc.signIns[0].username != "carol" || svc.signIns[0].password != "env-secret" {
		t.Errorf("signIns[0] = %+v", svc.signIns[0])
	}
}

func TestLoginPromptCancelled(t *testing.T) {
	svc := &fakeService{}
	prompt := &fakePrompter{credErr: ui.ErrCancelled}
	flow, _ := newTestFlow(t, svc, prompt)

	_, err := flow.Login(context.Background())
	if !errors.Is(err, ui.ErrCancelled) {
		t.Fatalf("Login error = %v, want cancellation to pass through", err)
	}
	if len(svc.signIns) != 0 {
		t.Error("no sign-in after cancellation")
	}
}

func TestLoginSaveFailureIsOnlyAWarning(t *testing.T) {
	t.Setenv("PLEX_USERNAME", "")
	t.Setenv("PLEX_PASSWORD", "")

	// Point the store inside a regular file so Save must fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	svc := &fakeService{signInResult: &fakeAccount{username: "alice", token: "tok"}}
	flow := &Flow{
		Store:   creds.New(filepath.Join(blocker, "creds.json")),
		Service: svc,
		Prompt:  &fakePrompter{username: "alice", password: "pw"},
		Log:     log.New(io.Discard),
	}

	if _, err := flow.Login(context.Background()); err != nil {
		t.Fatalf("Login: %v, want success despite unsaved credentials", err)
	}
}
