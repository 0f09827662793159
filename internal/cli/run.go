package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/mydehq/plextitler/internal/auth"
	"github.com/mydehq/plextitler/internal/batch"
	"github.com/mydehq/plextitler/internal/catalog"
	"github.com/mydehq/plextitler/internal/catalog/plex"
	"github.com/mydehq/plextitler/internal/config"
	"github.com/mydehq/plextitler/internal/creds"
	"github.com/mydehq/plextitler/internal/titlegen"
	"github.com/mydehq/plextitler/internal/ui"
	"github.com/spf13/cobra"
)

func runTitler(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	gen := titlegen.New(cfg)

	printBanner()

	server, library, err := selectTarget(ctx)
	if err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("%s: %s", StyleHeader.Render("Connected"), StyleCommand.Render(server.Name())))

	dryRun := flagDryRun
	if !dryRun {
		dryRun, err = ui.SelectRunMode()
		if err != nil {
			return err
		}
	}

	fmt.Printf("\nScanning library: %s...\n", StylePath.Render(library.Title()))
	proc := batch.New(gen, os.Stdout, logger, dryRun)
	_, err = proc.Run(ctx, library)
	return err
}

// selectTarget resolves the server and library to process: a direct
// connection when --url/--token were given, otherwise the account flow
// with interactive server and library selection. Esc from the library
// menu reopens the server menu when there is more than one server.
func selectTarget(ctx context.Context) (catalog.Server, catalog.Library, error) {
	if flagURL != "" && flagToken != "" {
		logger.Info("Connecting to server...", "url", flagURL)
		server, err := plex.Direct(ctx, flagURL, flagToken)
		if err != nil {
			return nil, nil, err
		}
		library, err := pickLibrary(ctx, server)
		if err != nil {
			if errors.Is(err, ui.ErrUserBack) {
				return nil, nil, ui.ErrCancelled
			}
			return nil, nil, err
		}
		return server, library, nil
	}

	account, err := login(ctx)
	if err != nil {
		return nil, nil, err
	}

	servers, err := account.Servers(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(servers) == 0 {
		return nil, nil, fmt.Errorf("no servers found on this account")
	}

	for {
		ref, err := pickServer(servers)
		if err != nil {
			return nil, nil, err
		}

		server, err := connectWithSpinner(ctx, ref)
		if err != nil {
			return nil, nil, err
		}

		library, err := pickLibrary(ctx, server)
		if errors.Is(err, ui.ErrUserBack) {
			if len(servers) == 1 {
				return nil, nil, ui.ErrCancelled
			}
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return server, library, nil
	}
}

func login(ctx context.Context) (catalog.Account, error) {
	credPath, err := creds.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("could not determine credentials path: %w", err)
	}

	flow := &auth.Flow{
		Store:    creds.New(credPath),
		Service:  plex.New(),
		Prompt:   ui.TerminalPrompter{},
		Log:      logger,
		Username: flagUsername,
		Password: flagPassword,
	}
	return flow.Login(ctx)
}

func pickServer(servers []catalog.ServerRef) (catalog.ServerRef, error) {
	if len(servers) == 1 {
		return servers[0], nil
	}
	names := make([]string, len(servers))
	for i, s := range servers {
		names[i] = s.Name()
	}
	idx, err := ui.SelectServer(names)
	if err != nil {
		return nil, err
	}
	return servers[idx], nil
}

func pickLibrary(ctx context.Context, server catalog.Server) (catalog.Library, error) {
	var libraries []catalog.Library
	var listErr error
	err := spinner.New().
		Title(fmt.Sprintf("%s %s", StyleDim.Render("Listing libraries on"), StyleCommand.Render(server.Name()))).
		Action(func() { libraries, listErr = server.Libraries(ctx) }).
		Run()
	if err != nil {
		return nil, fmt.Errorf("spinner failed: %w", err)
	}
	if listErr != nil {
		return nil, listErr
	}
	if len(libraries) == 0 {
		return nil, fmt.Errorf("no library sections found on server")
	}

	labels := make([]string, len(libraries))
	for i, lib := range libraries {
		labels[i] = fmt.Sprintf("%s (%s)", lib.Title(), lib.Type())
	}
	idx, err := ui.SelectLibrary(server.Name(), labels)
	if err != nil {
		return nil, err
	}
	return libraries[idx], nil
}

func connectWithSpinner(ctx context.Context, ref catalog.ServerRef) (catalog.Server, error) {
	var server catalog.Server
	var connErr error
	err := spinner.New().
		Title(fmt.Sprintf("%s %s", StyleDim.Render("Connecting to"), StyleCommand.Render(ref.Name()))).
		Action(func() { server, connErr = ref.Connect(ctx) }).
		Run()
	if err != nil {
		return nil, fmt.Errorf("spinner failed: %w", err)
	}
	return server, connErr
}
