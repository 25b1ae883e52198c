package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/veterimap/veterimap/internal/config"
	"github.com/veterimap/veterimap/internal/logger"
	"github.com/veterimap/veterimap/internal/session"
	"github.com/veterimap/veterimap/internal/tui"
	"github.com/veterimap/veterimap/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// sessionTTL bounds how long a token lives in a shared Redis store.
const sessionTTL = 30 * 24 * time.Hour

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "--version", "version", "-v":
		printVersion(os.Stdout, version)
		return nil
	case "help", "--help", "-h":
		printHelp()
		return nil
	case "", "login", "logout", "whoami":
	default:
		printHelp()
		return fmt.Errorf("unknown command %q", cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{Level: cfg.Logger.Level, Env: cfg.App.Env, Path: cfg.LogPath()})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	c, store := wire(cfg, storage, log)

	switch cmd {
	case "logout":
		return runLogout(os.Stdout, store)
	case "whoami":
		return runWhoami(ctx, os.Stdout, store)
	case "login":
		return runTUI(c, store, log, "/login")
	default:
		return runTUI(c, store, log, "")
	}
}

// openStorage picks where the token lives: Redis when configured, memory when
// the token comes from the environment, files in the data dir otherwise.
func openStorage(ctx context.Context, cfg *config.Config) (session.Storage, func(), error) {
	noop := func() {}
	switch {
	case cfg.Session.Token != "":
		mem := session.NewMemoryStorage()
		if err := mem.Set(session.KeyToken, strings.TrimSpace(cfg.Session.Token)); err != nil {
			return nil, noop, err
		}
		return mem, noop, nil
	case cfg.Session.RedisURL != "":
		rs, err := session.NewRedisStorage(ctx, cfg.Session.RedisURL, "veterimap:", sessionTTL)
		if err != nil {
			return nil, noop, fmt.Errorf("open redis session storage: %w", err)
		}
		return rs, func() { _ = rs.Close() }, nil
	default:
		return session.NewFileStorage(cfg.App.DataDir), noop, nil
	}
}

// wire builds the client and the session store around each other: the store
// supplies the bearer token and a 401 from the API ends the session that
// sent the rejected token.
func wire(cfg *config.Config, storage session.Storage, log *zap.Logger) (*client.Client, *session.Store) {
	store := session.New(storage, nil, session.WithLogger(log))
	c := client.New(cfg.API.BaseURL, store,
		client.WithLogger(log),
		client.WithTimeout(cfg.API.RequestTimeout()),
		client.WithUnauthorizedHandler(func(tok string) { store.LogoutIf(tok) }),
	)
	store.SetProfileFetcher(c)
	return c, store
}

func runTUI(c *client.Client, store *session.Store, log *zap.Logger, start string) error {
	app := tui.NewApp(c, store, tui.Options{Version: version, StartPath: start, Logger: log})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogout(w io.Writer, store *session.Store) error {
	if store.Restore() == nil {
		fmt.Fprintln(w, "Already logged out.")
		return nil
	}
	store.Logout()
	fmt.Fprintln(w, "Logged out.")
	return nil
}

func runWhoami(ctx context.Context, w io.Writer, store *session.Store) error {
	id := store.Init(ctx)
	if id == nil {
		printGreeting(w)
		return nil
	}
	name := id.Name
	if name == "" {
		name = id.Email
	}
	fmt.Fprintf(w, "%s\n", name)
	fmt.Fprintf(w, "  role     %s\n", id.Role.Label())
	fmt.Fprintf(w, "  level    %d\n", id.AccessLevel)
	profile := "incomplete"
	if id.HasProfile {
		profile = "complete"
	}
	fmt.Fprintf(w, "  profile  %s\n", profile)
	fmt.Fprintf(w, "  user id  %s\n", id.UserID)
	return nil
}
