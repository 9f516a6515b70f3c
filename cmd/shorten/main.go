package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/information-sharing-networks/shortener-ui/internal/console"
	"github.com/information-sharing-networks/shortener-ui/internal/logger"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/actions"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/client"
	"github.com/information-sharing-networks/shortener-ui/internal/ui/config"
	"github.com/information-sharing-networks/shortener-ui/internal/version"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	// CA roots for https backends when the system has none (e.g. scratch images)
	_ "golang.org/x/crypto/x509roots/fallback"
)

var errInputRejected = errors.New("input rejected")

type options struct {
	apiBaseURL string
	endpoint   string
	timeout    time.Duration
	logLevel   string
	noBrowser  bool
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		// rejected input has already been reported as an alert
		if !errors.Is(err, errInputRejected) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "shorten",
		Short: "Command line client for the URL shortener",
		Long: `Runs the URL shortener actions from the terminal.

The result of each action is printed to stdout. Problems with the input are reported on stderr.
Defaults for the flags are read from API_BASE_URL, SHORTEN_ENDPOINT, DISPATCH_TIMEOUT and LOG_LEVEL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}
	root.Version = version.Get().String()
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiBaseURL, "api", "", "shortener API base url (default $API_BASE_URL or http://localhost:8080)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "path of the shorten endpoint (default $SHORTEN_ENDPOINT or /shorten)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "request timeout, 0 waits until the request completes")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (default $LOG_LEVEL or warn)")
	flags.BoolVar(&opts.noBrowser, "no-browser", false, "print urls found by search instead of opening them")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print every backend response to stderr")

	commands := []struct {
		use   string
		short string
		args  cobra.PositionalArgs
	}{
		{"save <url>", "Shorten a url and print its short code", cobra.ExactArgs(1)},
		{"search <key>", "Open the url a short code points to", cobra.ExactArgs(1)},
		{"list", "List every short code and its url", cobra.NoArgs},
		{"stats <key>", "Show how often a short code was followed", cobra.ExactArgs(1)},
		{"update <key> <url>", "Point a short code at a new url", cobra.ExactArgs(2)},
		{"delete <key>", "Remove a short code", cobra.ExactArgs(1)},
	}

	for _, c := range commands {
		name := strings.Fields(c.use)[0]
		root.AddCommand(&cobra.Command{
			Use:   c.use,
			Short: c.short,
			Args:  c.args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd.Context(), name, strings.Join(args, " "), stdout, stderr)
			},
		})
	}

	return root
}

// load fills the options that were not set on the command line from the environment
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.NewCLIConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("api") {
		o.apiBaseURL = cfg.APIBaseURL
	}
	if !flags.Changed("endpoint") {
		o.endpoint = cfg.ShortenEndpoint
	}
	if !flags.Changed("timeout") {
		o.timeout = cfg.DispatchTimeout
	}
	if !flags.Changed("log-level") {
		o.logLevel = cfg.LogLevel
	}

	if err := config.ValidateAPIBaseURL(o.apiBaseURL); err != nil {
		return err
	}
	if o.timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %v", o.timeout)
	}
	return nil
}

// run performs one action. The positional arguments are the input value.
func (o *options) run(ctx context.Context, name, input string, stdout, stderr io.Writer) error {
	appLogger := logger.InitCLILogger(stderr, logger.ParseLogLevel(o.logLevel))

	apiClient := client.NewClient(o.apiBaseURL, o.endpoint, o.timeout)
	if o.verbose {
		apiClient.OnResponse(console.VerboseResponses(stderr, isTerminal(stderr)))
	}

	svc := actions.NewService(apiClient, appLogger)
	action, ok := svc.ByName(name)
	if !ok {
		return fmt.Errorf("unknown action %q", name)
	}

	opener := console.BrowserOpener(stderr)
	if o.noBrowser {
		opener = console.PrintOpener(stdout)
	}
	term := console.NewTerminal(input, stdout, stderr, opener)

	appLogger.Debug("running action",
		slog.String("action", name),
		slog.String("api_base_url", o.apiBaseURL),
	)

	select {
	case <-actions.Click(ctx, term, action):
	case <-ctx.Done():
		return ctx.Err()
	}

	if term.Alerted() {
		return errInputRejected
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
