package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/helpers"
	"github.com/siportevent/siports/internal/session"
	"github.com/siportevent/siports/internal/version"
	"github.com/spf13/cobra"
)

func (a *app) healthCommand() *cobra.Command {
	var chatbot bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the API health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if chatbot {
				res, err := a.client.ChatbotHealth(cmd.Context())
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), res)
			}

			res, err := a.client.Health(cmd.Context())
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVar(&chatbot, "chatbot", false, "check the chatbot service instead")
	return cmd
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the API banner and the local session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Status(cmd.Context())
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), statusResult{
				API:     res,
				Session: a.currentSession(),
			})
		},
	}
}

func (a *app) mobileConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mobile-config",
		Short: "Show the configuration served to the mobile app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.MobileConfig(cmd.Context())
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) exhibitorsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exhibitors",
		Aliases: []string{"exposants"},
		Short:   "Browse the exhibitor directory",
	}

	var filter helpers.ExhibitorFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List exhibitors",
		Long:  `Lists the exhibitor directory. --search matches name, category, description and specialties ignoring case and accents.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.ListExhibitors(cmd.Context())
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), helpers.FilterExhibitors(res, filter))
		},
	}
	list.Flags().StringVarP(&filter.Query, "search", "s", "", "free text filter")
	list.Flags().StringVarP(&filter.Category, "category", "c", "", "exact category (case and accent insensitive)")

	var miniSite bool
	get := &cobra.Command{
		Use:   "get ID",
		Short: "Show an exhibitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if miniSite {
				res, err := a.client.ExhibitorMiniSite(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), res)
			}

			res, err := a.client.GetExhibitor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}
	get.Flags().BoolVar(&miniSite, "mini-site", false, "show the exhibitor's mini-site instead")

	var msg client.ContactMessage
	contact := &cobra.Command{
		Use:   "contact ID",
		Short: "Send a message through an exhibitor's contact form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if msg.Name == "" || msg.Email == "" || msg.Message == "" {
				return errors.New("--name, --email and --message are required")
			}
			msg.ExhibitorID = client.ID(args[0])

			res, err := a.client.ContactExhibitor(cmd.Context(), msg)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}
	contact.Flags().StringVar(&msg.Name, "name", "", "your name")
	contact.Flags().StringVar(&msg.Email, "email", "", "your email")
	contact.Flags().StringVar(&msg.Company, "company", "", "your company")
	contact.Flags().StringVar(&msg.Subject, "subject", "", "message subject")
	contact.Flags().StringVarP(&msg.Message, "message", "m", "", "message text")

	cmd.AddCommand(list, get, contact)
	return cmd
}

func (a *app) packagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "List the visitor passes and partner packages",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "visitor",
			Short: "List visitor passes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.client.VisitorPackages(cmd.Context())
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), res)
			},
		},
		&cobra.Command{
			Use:   "partner",
			Short: "List partner packages",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := a.client.PartnerPackages(cmd.Context())
				if err != nil {
					return err
				}
				return a.printResult(cmd.OutOrStdout(), res)
			},
		},
	)
	return cmd
}

func (a *app) chatCommand() *cobra.Command {
	var req client.ChatRequest

	cmd := &cobra.Command{
		Use:   "chat MESSAGE...",
		Short: "Ask the event assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Message = strings.Join(args, " ")

			res, err := a.client.Chat(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&req.SessionID, "session-id", "", "continue an earlier conversation")
	cmd.Flags().StringVar(&req.ContextType, "context", "general", "general, packages, exhibitors, technical or navigation")
	return cmd
}

func (a *app) callCommand() *cobra.Command {
	var (
		data    string
		headers []string
		noAuth  bool
	)

	cmd := &cobra.Command{
		Use:   "call METHOD PATH",
		Short: "Send a raw request to the API",
		Long: `Sends a request to any API path and prints the JSON response.
The saved session token is sent when there is one (use --no-auth to skip it).`,
		Example: `  siports call GET /api/exposants --query '.exposants[].name'
  siports call POST /api/chatbot/chat --data '{"message":"Bonjour"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid path %q: %w", args[1], err)
			}

			req := client.Request{
				Method:  strings.ToUpper(args[0]),
				Path:    u.EscapedPath(), // keeps escaped slashes such as %2F
				Query:   u.Query(),
				Headers: map[string]string{},
			}
			if data != "" {
				req.Body = data
			}
			for _, h := range headers {
				name, value, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("invalid header %q, expected 'Name: value'", h)
				}
				req.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
			}

			var authenticated bool
			if !noAuth {
				s, err := a.store.Load()
				if err != nil && !errors.Is(err, session.ErrNoSession) {
					return err
				}
				if s.Status(a.now()) == session.TokenValid {
					req.Token = s.AccessToken
					authenticated = true
				}
			}

			res, err := a.client.Call(cmd.Context(), req)
			if err != nil {
				if authenticated {
					return a.clearOnUnauthorized(err)
				}
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "request body (sent as-is)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra header, 'Name: value' (repeatable)")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "do not send the saved session token")
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printResult(cmd.OutOrStdout(), version.Get())
		},
	}
}
