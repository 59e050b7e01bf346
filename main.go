package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"CoinBot/core"
	"CoinBot/core/autoresponder"
	"CoinBot/core/commands"
	"CoinBot/core/database"
	"CoinBot/core/dispatch"
	"CoinBot/core/dispatch/handlers"
	"CoinBot/core/events"
	"CoinBot/core/matrix"
	"CoinBot/core/services"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

// Variables used for command line parameters
var (
	settingsFile string
	login        bool
)

func init() {
	flag.StringVarP(&settingsFile, "config", "c", "config-dev.json", "Configuration path")
	flag.BoolVar(&login, "login", false, "Log in with a password and store the access token")
}

func main() {
	flag.Parse()
	if err := core.LoadSettings(settingsFile); err != nil {
		core.LogFatal(err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connect(ctx)
	if err != nil {
		core.LogFatal("error connecting to the homeserver, ", err)
		return
	}

	store, err := database.Open(core.Settings.Database())
	if err != nil {
		core.LogFatal(err)
		return
	}
	defer store.Close()

	dispatcher, err := newDispatcher(client, store)
	if err != nil {
		core.LogFatal(err)
		return
	}

	services.StartHealthCheck(ctx, core.Settings.HealthCheckURI(), services.HealthCheckInterval)
	services.StartStockAPI(ctx, core.Settings.StockAPIAddr())

	core.LogInfoF("Bot is now running as %s. Press CTRL-C to exit.", client.UserID())
	err = matrix.NewSyncer(client).Run(ctx, func(ctx context.Context, roomID string, event *matrix.RawEvent) {
		// Commands can wait on later messages, so the sync loop must not block on them.
		go dispatcher.HandleRaw(ctx, roomID, event)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		core.LogError("sync stopped: ", err)
	}
}

// newDispatcher wires the commands and the autoresponder to transport and store.
func newDispatcher(transport events.Transport, store database.KV) (*dispatch.Dispatcher, error) {
	registry := commands.NewRegistry()
	handlers.RegisterAll(registry)

	entries, err := autoresponder.DefaultEntries()
	if err != nil {
		return nil, err
	}

	return dispatch.New(dispatch.Config{
		Prefix:  core.Settings.CommandPrefix(),
		Admins:  core.Settings.Admins(),
		Banned:  core.Settings.Banned(),
		Timeout: core.Settings.CommandTimeout(),
	}, dispatch.Deps{
		Transport: transport,
		Store:     store,
		Registry:  registry,
		Responder: autoresponder.New(entries, store, core.Settings.ResponseCooldown(), core.DefaultRandom),
	}), nil
}

// connect builds the Matrix client from the configured token, the stored
// credentials or, with --login, a password prompt.
func connect(ctx context.Context) (*matrix.Client, error) {
	client := matrix.NewClient(matrix.Config{
		Homeserver:  core.Settings.Homeserver(),
		AccessToken: core.Settings.AccessToken(),
		SendRate:    core.Settings.SendRatePerSecond(),
	})

	if login {
		fmt.Printf("Password for %s: ", core.Settings.Username())
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		creds, err := client.Login(ctx, core.Settings.Username(), string(password))
		if err != nil {
			return nil, err
		}
		if err := core.SaveCredentials(core.Settings.CredentialsFile(), creds); err != nil {
			return nil, err
		}
		core.LogInfoF("Logged in as %s, credentials saved to %s", creds.UserID, core.Settings.CredentialsFile())
		return client, nil
	}

	if core.Settings.AccessToken() == "" {
		creds, err := core.LoadCredentials(core.Settings.CredentialsFile())
		if errors.Is(err, core.ErrNoCredentials) {
			return nil, errors.New("no access token configured, run with --login first")
		}
		if err != nil {
			return nil, err
		}
		client = matrix.NewClient(matrix.Config{
			Homeserver:  core.Settings.Homeserver(),
			AccessToken: creds.AccessToken,
			SendRate:    core.Settings.SendRatePerSecond(),
		})
	}

	userID, err := client.WhoAmI(ctx)
	if err != nil {
		return nil, err
	}
	core.LogDebugF("Access token belongs to %s", userID)
	return client, nil
}
