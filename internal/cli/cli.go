// Package cli implements the siports command line tool.
// Every command is a thin wrapper around one API client operation; results are printed as JSON on stdout
// and logs go to stderr.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/google/uuid"
	siports "github.com/siportevent/siports"
	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/logger"
	"github.com/siportevent/siports/internal/session"
	"github.com/siportevent/siports/internal/version"
	"github.com/spf13/cobra"
)

// Environment supplies the defaults for the global flags. Flags given on the command line take precedence.
type Environment struct {
	APIURL      string        `env:"SIPORTS_API_URL"` // defaults to siports.DefaultAPIBaseURL
	Timeout     time.Duration `env:"SIPORTS_TIMEOUT,default=30s"`
	SessionFile string        `env:"SIPORTS_SESSION_FILE"` // defaults to session.DefaultPath()
	LogLevel    string        `env:"SIPORTS_LOG_LEVEL,default=warn"`
}

// LoadEnvironment reads the SIPORTS_* variables
func LoadEnvironment() (Environment, error) {
	var e Environment
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return Environment{}, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}
	if e.APIURL == "" {
		e.APIURL = siports.DefaultAPIBaseURL
	}
	return e, nil
}

// app holds the state shared by the commands of one invocation
type app struct {
	apiURL      string
	timeout     time.Duration
	sessionFile string
	query       string
	logLevel    string

	logger *slog.Logger
	client *client.Client
	store  *session.FileStore
	now    func() time.Time
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	e, err := LoadEnvironment()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	cmd := NewRootCommand(e)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", displayError(err))
		return 1
	}
	return 0
}

// displayError shows backend messages as sent, keeping any context added by the command
func displayError(err error) string {
	msg := err.Error()
	if ce, ok := client.AsError(err); ok {
		msg = strings.Replace(msg, ce.Error(), ce.UserError(), 1)
	}
	return msg
}

// NewRootCommand builds the siports command tree
func NewRootCommand(e Environment) *cobra.Command {
	a := &app{now: time.Now}

	v := version.Get()
	root := &cobra.Command{
		Use:           "siports",
		Short:         "SIPORTS API command line client",
		Long:          `Command line access to the SIPORTS event platform API (exhibitor directory, packages, chatbot and administration).`,
		Version:       fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", e.APIURL, "SIPORTS API base URL (env SIPORTS_API_URL)")
	flags.DurationVar(&a.timeout, "timeout", e.Timeout, "limit for each API call, 0 for none (env SIPORTS_TIMEOUT)")
	flags.StringVar(&a.sessionFile, "session-file", e.SessionFile, "where the login session is kept (env SIPORTS_SESSION_FILE)")
	flags.StringVarP(&a.query, "query", "q", "", "jq expression applied to the JSON output")
	flags.StringVar(&a.logLevel, "log-level", e.LogLevel, "debug, info, warn or error (env SIPORTS_LOG_LEVEL)")

	root.AddCommand(
		a.healthCommand(),
		a.statusCommand(),
		a.mobileConfigCommand(),
		a.registerCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.exhibitorsCommand(),
		a.packagesCommand(),
		a.chatCommand(),
		a.statsCommand(),
		a.usersCommand(),
		a.callCommand(),
		a.versionCommand(),
	)
	return root
}

// setup creates the logger, the session store and the API client. Each invocation gets its own request id.
func (a *app) setup(cmd *cobra.Command) error {
	a.logger = logger.NewLogger(cmd.ErrOrStderr(), logger.ParseLogLevel(a.logLevel), "dev")

	if a.sessionFile == "" {
		path, err := session.DefaultPath()
		if err != nil {
			return err
		}
		a.sessionFile = path
	}
	a.store = session.NewFileStore(a.sessionFile)

	c, err := client.New(client.Config{
		BaseURL:   a.apiURL,
		Timeout:   a.timeout,
		UserAgent: fmt.Sprintf("siports-cli/%s", version.Get().Version),
		Logger:    a.logger,
	})
	if err != nil {
		return fmt.Errorf("invalid --api-url: %w", err)
	}
	a.client = c

	requestID := uuid.NewString()
	cmd.SetContext(client.ContextWithRequestID(cmd.Context(), requestID))

	a.logger.Debug("command started",
		slog.String("command", cmd.CommandPath()),
		slog.String("request_id", requestID),
		slog.String("api_url", c.BaseURL()),
	)
	return nil
}

// loadSession returns the saved session, refusing sessions that are known to have expired
func (a *app) loadSession() (*session.Session, error) {
	s, err := a.store.Load()
	if errors.Is(err, session.ErrNoSession) {
		return nil, errors.New("not logged in: run 'siports login' first")
	}
	if err != nil {
		return nil, err
	}

	if s.Status(a.now()) == session.TokenExpired {
		if err := a.store.Clear(); err != nil {
			a.logger.Warn("could not remove expired session", slog.String("error", err.Error()))
		}
		return nil, errors.New("session expired: run 'siports login' again")
	}
	return s, nil
}

// withSession wraps commands that act for the logged in user.
// A 401 means the backend no longer accepts the token, so the saved session is removed.
func (a *app) withSession(fn func(cmd *cobra.Command, args []string, s *session.Session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := a.loadSession()
		if err != nil {
			return err
		}
		return a.clearOnUnauthorized(fn(cmd, args, s))
	}
}

func (a *app) clearOnUnauthorized(err error) error {
	if err == nil || !client.IsUnauthorized(err) {
		return err
	}
	a.logger.Debug("backend rejected the saved token", slog.String("error", err.Error()))
	if clearErr := a.store.Clear(); clearErr != nil {
		a.logger.Warn("could not remove session", slog.String("error", clearErr.Error()))
	}
	return fmt.Errorf("%s: the saved session has been removed, run 'siports login' again", client.UserMessage(err))
}
