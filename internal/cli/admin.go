package cli

import (
	"errors"
	"fmt"

	siports "github.com/siportevent/siports"
	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/session"
	"github.com/spf13/cobra"
)

// admin commands need a session belonging to an administrator - the backend answers 403 otherwise

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the platform statistics (admin)",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(cmd *cobra.Command, args []string, s *session.Session) error {
			res, err := a.client.DashboardStats(cmd.Context(), s.AccessToken)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		}),
	}
}

func (a *app) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (admin)",
	}

	var filter client.UserFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(cmd *cobra.Command, args []string, s *session.Session) error {
			if filter.Type != "" && !siports.ValidUserTypes[filter.Type] {
				return fmt.Errorf("invalid --type %q", filter.Type)
			}
			if filter.Status != "" && !siports.ValidUserStatuses[filter.Status] {
				return fmt.Errorf("invalid --status %q", filter.Status)
			}

			res, err := a.client.ListUsers(cmd.Context(), s.AccessToken, filter)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		}),
	}
	list.Flags().IntVar(&filter.Page, "page", 0, "page number")
	list.Flags().IntVar(&filter.PerPage, "per-page", 0, "users per page")
	list.Flags().StringVar(&filter.Type, "type", "", "visitor, exhibitor, partner or admin")
	list.Flags().StringVar(&filter.Status, "status", "", "pending, validated or rejected")
	list.Flags().StringVarP(&filter.Search, "search", "s", "", "search text")

	var page, perPage int
	pending := &cobra.Command{
		Use:   "pending",
		Short: "List accounts waiting for validation",
		Args:  cobra.NoArgs,
		RunE: a.withSession(func(cmd *cobra.Command, args []string, s *session.Session) error {
			res, err := a.client.PendingUsers(cmd.Context(), s.AccessToken, page, perPage)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		}),
	}
	pending.Flags().IntVar(&page, "page", 0, "page number")
	pending.Flags().IntVar(&perPage, "per-page", 0, "users per page")

	validate := &cobra.Command{
		Use:   "validate ID",
		Short: "Approve a pending account",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(cmd *cobra.Command, args []string, s *session.Session) error {
			res, err := a.client.ValidateUser(cmd.Context(), s.AccessToken, args[0], adminEmail(s))
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		}),
	}

	var reject client.RejectRequest
	rejectCmd := &cobra.Command{
		Use:   "reject ID",
		Short: "Reject a pending account",
		Args:  cobra.ExactArgs(1),
		RunE: a.withSession(func(cmd *cobra.Command, args []string, s *session.Session) error {
			if reject.Reason == "" {
				return errors.New("--reason is required")
			}
			reject.AdminEmail = adminEmail(s)

			res, err := a.client.RejectUser(cmd.Context(), s.AccessToken, args[0], reject)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		}),
	}
	rejectCmd.Flags().StringVarP(&reject.Reason, "reason", "r", "", "reason shown to the user")
	rejectCmd.Flags().StringVar(&reject.Comment, "comment", "", "internal comment")

	cmd.AddCommand(list, pending, validate, rejectCmd)
	return cmd
}

func adminEmail(s *session.Session) string {
	if s.User == nil {
		return ""
	}
	return s.User.Email
}
