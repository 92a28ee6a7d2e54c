package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ringcheck/ringcheck/internal/api"
	"github.com/ringcheck/ringcheck/internal/config"
	"github.com/ringcheck/ringcheck/internal/controller"
	"github.com/ringcheck/ringcheck/internal/log"
	"github.com/ringcheck/ringcheck/internal/session"
	"github.com/ringcheck/ringcheck/internal/tui/views"
)

var errNotLoggedIn = fmt.Errorf("%w; log in with: ringcheck login", controller.ErrNoSession)

// env is everything a command needs to talk to the API on behalf of the
// stored session.
type env struct {
	dir    string
	cfg    *config.Config
	logger *log.Logger
	store  *session.Store
	ctrl   *controller.Controller
}

// openEnv loads the config, opens the session store and log, and builds
// the controller. Callers must Close the env.
func openEnv(cmd *cobra.Command) (*env, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	e := &env{dir: dir, cfg: cfg}
	if cfg.Log.Enabled {
		e.logger, err = log.NewLogger(dir, cfg.Log.Level)
		if err != nil {
			return nil, err
		}
	}

	e.store, err = session.NewStore(cfg.SessionDBPath(dir))
	if err != nil {
		_ = e.logger.Close()
		return nil, err
	}

	e.ctrl = controller.New(controller.Options{
		Client:   api.NewClient(cfg.API.BaseURL, cfg.RequestTimeout(), e.logger),
		Store:    e.store,
		Location: controller.NewMemoryLocation(viewFlag),
		Logger:   e.logger,
		Config:   cfg,
	})

	stderr := cmd.ErrOrStderr()
	e.ctrl.Subscribe(func(ev controller.Event) {
		if ev.Kind == controller.SessionExpired {
			fmt.Fprintln(stderr, "Your session expired. Please log in again with: ringcheck login")
		}
	})

	return e, nil
}

// Close releases the session store and the log.
func (e *env) Close() error {
	return errors.Join(e.store.Close(), e.logger.Close())
}

// open restores the stored session and activates v. It fails when v needs
// a session and none is stored.
func (e *env) open(v controller.View) (controller.Ticket, error) {
	if _, err := e.ctrl.Start(); err != nil {
		return controller.Ticket{}, err
	}
	ticket, _ := e.ctrl.Navigate(v)
	if ticket.View != v {
		return controller.Ticket{}, errNotLoggedIn
	}
	return ticket, nil
}

// describe turns an error into the single line printed by Execute.
func describe(err error) string {
	switch {
	case errors.Is(err, errNotLoggedIn):
		return err.Error()
	case errors.Is(err, controller.ErrNoSession):
		return errNotLoggedIn.Error()
	}
	return views.DescribeError(err)
}

// prompter reads answers from the command's input. Secrets are read
// without echo when the input is a terminal.
type prompter struct {
	in   io.Reader
	out  io.Writer
	line *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{in: in, out: cmd.ErrOrStderr(), line: bufio.NewReader(in)}
}

// Line prompts for one line of input.
func (p *prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	s, err := p.line.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(s), nil
}

// Secret prompts for a password.
func (p *prompter) Secret(prompt string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	fmt.Fprint(p.out, prompt)
	s, err := p.line.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}
