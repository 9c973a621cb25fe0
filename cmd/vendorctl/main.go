// Command vendorctl drives a vendor session from the terminal: log in, pick
// the active store and run store-scoped calls against the backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/common/expfmt"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/api"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/cli"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/config"
	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/httputil"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/logging"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/metrics"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/session"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/tokenstore"
)

// commandTimeout bounds a single command, including the startup check.
const commandTimeout = 60 * time.Second

const usage = `Usage: vendorctl [flags] <command> [args]

Commands:
  status                          Show the current session
  login --phone P [--password S]  Log in (password falls back to VENDOR_PASSWORD)
  logout                          Clear the saved session
  stores                          List stores and branches
  switch <store-id>               Select the active store
  otp send --phone P              Send a password-reset OTP
  otp verify --phone P --otp C    Verify a password-reset OTP
  reset-password --phone P --otp C --new-password S
  orders [--store ID]             List orders for the active store
  products create --name N --price X [--store ID]
  products delete <product-id>
  completion bash|zsh|fish [--install]

Flags:
`

// app holds the wired components for one invocation.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	api     *api.Client
	session *session.Manager
	out     *cli.Printer
	close   func() error
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vendorctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Configuration file path (YAML)")
	envFile := fs.String("env", ".env", "Dotenv file path")
	logLevel := fs.String("log-level", "", "Log level override (debug, info, warn, error)")
	ephemeral := fs.Bool("ephemeral", false, "Keep the session in memory only")
	dumpMetrics := fs.Bool("metrics", false, "Print client metrics to stderr on exit")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	out := cli.NewPrinter(stdout)
	command, rest := fs.Arg(0), fs.Args()[1:]
	if command == "completion" {
		return runCompletion(out, rest)
	}
	if command == "help" {
		fs.Usage()
		return 0
	}

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		cli.NewPrinter(stderr).Error(err.Error())
		return 1
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *ephemeral {
		cfg.Storage.Backend = config.BackendMemory
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	ctx = logging.WithTraceID(ctx, logging.NewTraceID())

	a, err := newApp(cfg, out, stderr)
	if err != nil {
		cli.NewPrinter(stderr).Error(err.Error())
		return 1
	}
	defer func() {
		if err := a.close(); err != nil {
			a.logger.WithError(err).Warn("failed to close token store")
		}
	}()
	if *dumpMetrics {
		defer writeMetrics(stderr)
	}

	a.session.CheckLoginStatus(ctx)

	if err := a.dispatch(ctx, command, rest); err != nil {
		out.Error(errorMessage(err))
		a.logger.WithContext(ctx).WithError(err).WithField("command", command).Debug("command failed")
		return 1
	}
	return 0
}

// newApp wires storage, the HTTP client, the API and the session manager.
func newApp(cfg *config.Config, out *cli.Printer, logOut io.Writer) (*app, error) {
	logger := logging.New("vendorctl", cfg.Logging.Level, cfg.Logging.Format)
	logger.SetOutput(logOut)

	tokens, closeStore, err := tokenstore.Open(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	client, err := httputil.New(httputil.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		Logger:            logger,
	})
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	apiClient := api.New(client, cfg.Routes)
	mgr := session.New(session.Config{API: apiClient, Tokens: tokens, Logger: logger})
	client.SetTokenSource(mgr.BearerToken)
	apiClient.SetScope(mgr.ActiveStoreID)

	return &app{
		cfg:     cfg,
		logger:  logger,
		api:     apiClient,
		session: mgr,
		out:     out,
		close:   closeStore,
	}, nil
}

func runCompletion(out *cli.Printer, args []string) int {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	install := fs.Bool("install", false, "Install into the user's shell config directory")
	positional, err := parseArgs(fs, args)
	if err != nil || len(positional) != 1 {
		out.Error("usage: vendorctl completion bash|zsh|fish [--install]")
		return 2
	}
	shell := positional[0]
	if !*install {
		if err := cli.GenerateCompletion(out.Writer(), shell); err != nil {
			out.Error(err.Error())
			return 1
		}
		return 0
	}
	path, err := cli.InstallCompletion("", shell)
	if err != nil {
		out.Error(err.Error())
		return 1
	}
	out.Success("completion script installed to " + path)
	return 0
}

// errorMessage shows backend errors by their user message and local errors
// as they are.
func errorMessage(err error) string {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		return apperrors.UserMessage(err)
	}
	return err.Error()
}

func writeMetrics(w io.Writer) {
	families, err := metrics.Registry.Gather()
	if err != nil {
		fmt.Fprintf(w, "gather metrics: %v\n", err)
		return
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		_ = enc.Encode(mf)
	}
}
