package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/vanguard/internal/client/accesshost"
	"github.com/dmitrijs2005/vanguard/internal/client/backend"
	"github.com/dmitrijs2005/vanguard/internal/client/config"
	"github.com/dmitrijs2005/vanguard/internal/client/flow"
	"github.com/dmitrijs2005/vanguard/internal/client/models"
	"github.com/dmitrijs2005/vanguard/internal/client/selfhosted"
	"github.com/dmitrijs2005/vanguard/internal/client/store"
	"github.com/dmitrijs2005/vanguard/internal/filex"
	"github.com/dmitrijs2005/vanguard/internal/logging"
)

// App is the interactive client.
type App struct {
	config   *config.Config
	log      logging.Logger
	store    *store.Store
	api      backend.Client
	selector *accesshost.Selector
	editor   *selfhosted.Editor
	machine  *flow.Machine
	reader   *bufio.Reader
	out      io.Writer
	unlocked bool
}

// NewApp opens the local store and the backend connection described by c.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if c.StoreDriver == store.DriverSQLite {
		if _, err := filex.EnsureParentDir(c.StorePath); err != nil {
			return nil, err
		}
	}
	st, err := store.Open(ctx, c.StoreDriver, c.StorePath)
	if err != nil {
		log.Error(ctx, "error opening store", "path", c.StorePath, "error", err)
		return nil, err
	}

	api, err := backend.NewGRPCClient(c.BackendAddr,
		backend.WithTimeout(c.RequestTimeout),
		backend.WithLogger(log.With("component", "backend")),
	)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	a := newApp(st, api, log, bufio.NewReader(os.Stdin), os.Stdout)
	a.config = c
	return a, nil
}

// newApp wires the onboarding components around st and api.
func newApp(st *store.Store, api backend.Client, log logging.Logger, r *bufio.Reader, w io.Writer) *App {
	a := &App{store: st, api: api, log: log, reader: r, out: w}

	a.editor = selfhosted.New(st, selfhosted.WithLogger(log.With("component", "selfhosted")))
	a.selector = accesshost.New(st, a.editor,
		accesshost.WithLogger(log.With("component", "accesshost")),
		accesshost.WithOnChange(func(h models.AccessHost) {
			fmt.Fprintf(a.out, "Logging in on: %s\n", h)
		}),
	)
	a.machine = flow.New(st, flow.Handlers{
		SSO:         a.startSSO,
		Register:    a.createAccount,
		DeviceLogin: a.requestDeviceLogin,
		Continue:    a.loginAndSync,
	},
		flow.WithLogger(log.With("component", "flow")),
		flow.WithOnChange(func(flow.State) { a.render() }),
	)
	return a
}

// Close releases the store and the backend connection.
func (a *App) Close() error {
	return errors.Join(a.api.Close(), a.store.Close())
}

// Run starts the REPL.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Warn(ctx, "shutdown", "error", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.unlocked
}

func (a *App) step() flow.Step {
	return a.machine.State().Step
}
