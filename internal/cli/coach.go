package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/entrydesk/internal/app"
)

// CoachCmd groups coach account management.
func CoachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Manage coach accounts",
	}
	cmd.AddCommand(coachAddCmd(), coachListCmd(), coachPromoteCmd())
	return cmd
}

func coachAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [email]",
		Short: "Register a coach",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := mustString(cmd, "name")
			admin, _ := cmd.Flags().GetBool("admin")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				coach, err := a.Service.SignIn(ctx, args[0], name, "")
				if err != nil {
					return err
				}
				if admin && !coach.IsAdmin {
					if coach, err = a.Service.SetCoachAdmin(ctx, organizer, coach.Email, true); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s coach %d: %s\n", green("✓"), coach.ID, coach.Email)
				return nil
			})
		},
	}
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().Bool("admin", false, "grant organizer rights")
	return cmd
}

func coachListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List coaches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				coaches, err := a.Service.ListCoaches(ctx, organizer)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE")
				for _, c := range coaches {
					role := "coach"
					if a.Service.ActorFor(c).Admin {
						role = yellow("organizer")
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Email, c.Name, role)
				}
				return w.Flush()
			})
		},
	}
}

func coachPromoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promote [email]",
		Short: "Grant or revoke organizer rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			revoke, _ := cmd.Flags().GetBool("revoke")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				coach, err := a.Service.SetCoachAdmin(ctx, organizer, args[0], !revoke)
				if err != nil {
					return err
				}
				state := "granted"
				if revoke {
					state = "revoked"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s organizer rights %s for %s\n", green("✓"), state, coach.Email)
				return nil
			})
		},
	}
	cmd.Flags().Bool("revoke", false, "remove organizer rights instead")
	return cmd
}
