package cli

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	siports "github.com/siportevent/siports"
	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/session"
	"github.com/spf13/cobra"
)

type loginResult struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
	SessionFile string    `json:"session_file"`
}

type sessionState struct {
	Status    string    `json:"status"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (a *app) loginCommand() *cobra.Command {
	var (
		email, password string
		visitor         bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		Long: `Authenticates with the SIPORTS API and saves the access token in the session file.
The password is read from stdin when --password is not given. --visitor opens an anonymous visitor session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				res *client.LoginResponse
				err error
			)

			if visitor {
				res, err = a.client.VisitorLogin(cmd.Context())
			} else {
				email = strings.TrimSpace(email)
				if email == "" {
					return errors.New("--email is required")
				}
				if password == "" {
					if password, err = readPassword(cmd); err != nil {
						return err
					}
				}
				res, err = a.client.Login(cmd.Context(), email, password)
			}
			if err != nil {
				return err
			}
			if res.AccessToken == "" {
				return errors.New("the login response did not include an access token")
			}

			s := session.FromLogin(res, a.now())
			if s.User == nil {
				me, err := a.client.Me(cmd.Context(), s.AccessToken)
				if err != nil {
					return fmt.Errorf("logged in but could not load the profile: %w", err)
				}
				s.User = &me.Profile
			}

			if err := a.store.Save(s); err != nil {
				return err
			}
			a.logger.Info("session saved", slog.String("path", a.store.Path()))

			return a.printResult(cmd.OutOrStdout(), loginResult{
				Email:       s.User.Email,
				Name:        s.User.DisplayName(),
				Role:        s.User.EffectiveRole(),
				ExpiresAt:   s.ExpiresAt,
				SessionFile: a.store.Path(),
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().BoolVar(&visitor, "visitor", false, "open an anonymous visitor session")
	cmd.MarkFlagsMutuallyExclusive("visitor", "email")
	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no password given: use --password or pipe it on stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) registerCommand() *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  `Creates a visitor, exhibitor or partner account. Exhibitor and partner accounts stay pending until an administrator validates them.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Email == "" || req.FirstName == "" || req.LastName == "" {
				return errors.New("--email, --first-name and --last-name are required")
			}
			if req.UserType != "" && !siports.ValidUserTypes[req.UserType] {
				return fmt.Errorf("invalid --type %q", req.UserType)
			}
			if req.Password == "" {
				var err error
				if req.Password, err = readPassword(cmd); err != nil {
					return err
				}
			}

			res, err := a.client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "account password (read from stdin when not set)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Company, "company", "", "company")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&req.UserType, "type", "visitor", "visitor, exhibitor or partner")
	cmd.Flags().StringVar(&req.VisitorPackage, "package", "", "visitor pass id")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved session",
		Long:  `Removes the session file. The backend has no logout endpoint so the token itself is not revoked.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), sessionState{Status: session.TokenMissing.String()})
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the profile of the logged in user",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(cmd *cobra.Command, args []string, s *session.Session) error {
			me, err := a.client.Me(cmd.Context(), s.AccessToken)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), me)
		}),
	}
}

// currentSession reports the saved session without contacting the backend
func (a *app) currentSession() sessionState {
	s, err := a.store.Load()
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			a.logger.Warn("could not read session file", slog.String("error", err.Error()))
		}
		return sessionState{Status: session.TokenMissing.String()}
	}

	state := sessionState{
		Status:    s.Status(a.now()).String(),
		ExpiresAt: s.ExpiresAt,
	}
	if s.User != nil {
		state.Email = s.User.Email
		state.Role = s.User.EffectiveRole()
	}
	return state
}

// statusResult combines the API banner with the local session state
type statusResult struct {
	API     *client.APIStatus `json:"api"`
	Session sessionState      `json:"session"`
}
