package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/shopsage/internal/client/config"
	"github.com/dmitrijs2005/shopsage/internal/client/history"
	"github.com/dmitrijs2005/shopsage/internal/client/search"
	"github.com/dmitrijs2005/shopsage/internal/client/session"
	"github.com/dmitrijs2005/shopsage/internal/client/storage"
	"github.com/dmitrijs2005/shopsage/internal/cryptox"
	"github.com/dmitrijs2005/shopsage/internal/logging"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	kv       storage.Store
	sessions *session.Store
	history  *history.Store
	searcher search.Searcher
	reader   *bufio.Reader
	out      io.Writer

	closers []io.Closer
}

// NewApp opens storage and builds the stores described by c. Close releases
// everything NewApp acquired.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, logCloser, err := logging.New(c.LoggingOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	a := &App{
		config: c,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	a.closers = append(a.closers, logCloser)

	if err := a.init(ctx); err != nil {
		a.log.Error(ctx, "failed to start client", "error", err)
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	codec, err := cryptox.NewSecretCodec(a.config.SecretMode)
	if err != nil {
		return err
	}

	kv, err := storage.Open(ctx, a.config.StorageOptions(), a.log)
	if err != nil {
		return err
	}
	a.kv = kv
	a.closers = append(a.closers, kv)

	keys := storage.NewKeys(a.config.KeyPrefix)

	a.sessions, err = session.New(ctx, kv, a.log, session.Options{
		Keys:    keys,
		Latency: a.config.AuthLatency,
		Codec:   codec,
	})
	if err != nil {
		return err
	}

	a.history, err = history.New(ctx, kv, a.sessions, a.log, history.Options{Keys: keys})
	if err != nil {
		return err
	}

	a.searcher = search.NewMockSearcher(search.MockOptions{Delay: a.config.SearchLatency})
	return nil
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() error {
	if a.history != nil {
		a.history.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Run starts the REPL on stdin and blocks until the user exits or stdin
// is closed.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to ShopSage (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current() != nil
}

// getStatus is shown in the prompt: "(name email)" when signed in.
func (a *App) getStatus() string {
	cur := a.sessions.Current()
	if cur == nil {
		return ""
	}
	return fmt.Sprintf("(%s %s)", cur.Name, cur.Email)
}
