// Package cmd contains the simwallet command line client. Every command runs
// a dashboard session against the backend, so the rules the web page applies
// to transfers and mining apply here too.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardanlabs/simwallet/business/core/dashboard"
	"github.com/ardanlabs/simwallet/business/sys/backend"
	"github.com/ardanlabs/simwallet/foundation/events"
	"github.com/ardanlabs/simwallet/foundation/localstore"
	"github.com/ardanlabs/simwallet/foundation/logger"
	"github.com/ardanlabs/simwallet/foundation/nameservice"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Set of output formats.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type options struct {
	url      string
	username string
	password string
	store    string
	book     string
	output   string
	timeout  time.Duration
	verbose  bool
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd constructs the command tree.
func NewRootCmd() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:          "simwallet",
		Short:        "Your simulated wallet",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.url, "url", "u", "http://localhost:5000", "Url of the backend.")
	flags.StringVar(&opts.username, "username", "", "Username to login with.")
	flags.StringVar(&opts.password, "password", "", "Password to login with.")
	flags.StringVarP(&opts.store, "store", "s", "zwallet/local.db", "Path to the local storage file.")
	flags.StringVar(&opts.book, "book", "zwallet/names.yaml", "Path to the name book.")
	flags.StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml.")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Timeout of a backend call.")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every step to stderr.")

	rootCmd.AddCommand(
		balancesCmd(&opts),
		chainCmd(&opts),
		exploreCmd(&opts),
		historyCmd(&opts),
		pendingCmd(&opts),
		sendCmd(&opts),
		mineCmd(&opts),
		walletCmd(&opts),
		signupCmd(&opts),
		themeCmd(&opts),
	)

	return rootCmd
}

// =============================================================================

// client is one run of the command line against the backend.
type client struct {
	session *dashboard.Session
	opts    *options
	out     io.Writer
	log     *zap.SugaredLogger
	ns      *nameservice.NameService
	store   *localstore.Store
}

// newClient constructs the session for a command. Notifications are written
// to stderr as they are raised.
func newClient(cmd *cobra.Command, opts *options, withStore bool) (*client, error) {
	log := logger.NewNop()
	if opts.verbose {
		l, err := logger.New("WALLET", "stderr")
		if err != nil {
			return nil, fmt.Errorf("constructing logger: %w", err)
		}
		log = l
	}

	switch opts.output {
	case outputText, outputJSON, outputYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.output)
	}

	bc, err := backend.New(backend.Config{
		Host:    opts.url,
		Timeout: opts.timeout,
	})
	if err != nil {
		return nil, err
	}

	ns, err := nameservice.New(opts.book)
	if err != nil {
		return nil, err
	}

	c := client{
		opts: opts,
		out:  cmd.OutOrStdout(),
		log:  log,
		ns:   ns,
	}

	cfg := dashboard.Config{
		ID:     "cli",
		Client: bc,
		NS:     ns,
		Notifier: events.NotifierFunc(func(e events.Event) {
			if e.Kind == events.KindInfo && !opts.verbose {
				return
			}
			fmt.Fprintln(cmd.ErrOrStderr(), e)
		}),
		EvHandler: func(v string, args ...any) {
			log.Infow(fmt.Sprintf(v, args...))
		},
	}

	if withStore {
		store, err := localstore.Open(opts.store)
		if err != nil {
			return nil, err
		}
		c.store = store
		cfg.Storage = store
	}

	c.session = dashboard.New(cfg)

	return &c, nil
}

// login authenticates with the username and password flags.
func (c *client) login(ctx context.Context) error {
	if c.opts.username == "" {
		return fmt.Errorf("this command needs --username and --password")
	}

	if !c.session.Login(ctx, c.opts.username, c.opts.password) {
		return fmt.Errorf("login failed")
	}

	return nil
}

// close saves the learned names and releases the session.
func (c *client) close() {
	if c.opts.book != "" {
		if err := c.ns.Save(c.opts.book); err != nil {
			c.log.Errorw("close", "status", "save name book", "ERROR", err)
		}
	}

	if c.store != nil {
		c.store.Close()
	}

	c.session.Shutdown()
	c.log.Sync()
}

// print writes the value in the selected format. The text form is produced
// by the specified function.
func (c *client) print(v any, text func(w io.Writer)) error {
	switch c.opts.output {
	case outputJSON:
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case outputYAML:
		enc := yaml.NewEncoder(c.out)
		defer enc.Close()
		return enc.Encode(v)
	}

	text(c.out)
	return nil
}

func printLines(w io.Writer, lines []string, placeholder string) {
	if len(lines) == 0 {
		fmt.Fprintln(w, placeholder)
		return
	}

	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
