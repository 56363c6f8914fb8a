package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/config"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/authority"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/coordinator"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/ephemeral"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/notify"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/policy"
	"github.com/dmitrijs2005/shopkeeper/internal/upload/transfer"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type galleryService interface {
	Open(ctx context.Context, listingID string) error
	Add(ctx context.Context, paths []string) (coordinator.BatchReport, error)
	Remove(ctx context.Context, index int) error
	Move(ctx context.Context, from, to int) error
	Save(ctx context.Context, force bool) (int, error)
	Status() (services.Status, error)
	Close(ctx context.Context)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config  *config.Config
	gallery galleryService
	server  pinger
	logger  logging.Logger
	out     io.Writer
	closers []func() error

	mu   sync.Mutex
	mode Mode
}

// NewApp wires the upload pipeline to the configured server. When no access
// token is configured it is read from the terminal.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewText(os.Stderr, logging.ParseLevel(c.LogLevel))

	token := c.AccessToken
	if token == "" {
		t, err := GetToken(os.Stdout)
		if err != nil {
			return nil, err
		}
		token = t
	}
	tokens := authority.StaticToken(token)

	app := &App{config: c, logger: logger, out: os.Stdout}

	previews, cleanup, err := openPreviewStore(c.PreviewDir)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		app.closers = append(app.closers, cleanup)
	}

	checker, err := client.NewHealthChecker(c.HealthAddr)
	if err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("health checker: %w", err)
	}

	httpClient := &http.Client{Timeout: c.RequestTimeout}
	sc := client.NewServerClient(client.NewAPIClient(c.ServerURL, tokens, httpClient), checker)
	app.closers = append([]func() error{sc.Close}, app.closers...)
	app.server = sc

	pol := policy.Default()
	pol.MaxBytes = c.MaxFileBytes
	if len(c.AllowedTypes) > 0 {
		pol.AllowedTypePrefixes = c.AllowedTypes
	}

	notifier := notify.Multi{notify.NewWriter(os.Stdout), notify.NewLogNotifier(logger)}
	coord := coordinator.New(pol,
		authority.NewClient(c.ServerURL, tokens, httpClient),
		transfer.NewExecutor(httpClient),
		previews,
		notifier,
		coordinator.WithConcurrency(c.Concurrency),
		coordinator.WithLogger(logger),
	)

	app.gallery = services.NewGalleryService(sc, coord, previews, c.MaxImages, logger)
	return app, nil
}

// memoryPreviews selects the in-process preview store.
const memoryPreviews = "memory"

// openPreviewStore returns the preview store for dir and, for a temporary
// directory, the function that removes it.
func openPreviewStore(dir string) (ephemeral.Store, func() error, error) {
	switch dir {
	case memoryPreviews:
		return ephemeral.NewMemoryStore(), nil, nil
	case "":
		s, err := ephemeral.NewTempDirStore()
		if err != nil {
			return nil, nil, err
		}
		return s, s.Cleanup, nil
	default:
		s, err := ephemeral.NewDirStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	}
}

// Run starts the status watcher and the REPL on stdin, and releases every
// resource when the REPL exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	fmt.Fprintln(a.out, "Welcome to shopkeeper gallery (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))

	cancel()
	wg.Wait()
	if err := a.Close(context.Background()); err != nil {
		a.logger.Warn(ctx, "shutdown", "error", err)
	}
}

// Close releases local previews and connections.
func (a *App) Close(ctx context.Context) error {
	if a.gallery != nil {
		a.gallery.Close(ctx)
	}
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) getStatus() string {
	s := ""
	if st, err := a.gallery.Status(); err == nil && st.ListingID != "" {
		s = st.ListingID + " "
	}
	if m := a.currentMode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.server.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
