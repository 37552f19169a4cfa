package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/entrydesk/internal/app"
	"github.com/JonMunkholm/entrydesk/internal/core"
)

// StatsCmd prints registration totals.
func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show registration statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			email := mustString(cmd, "coach")
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				actor := organizer
				if email != "" {
					coach, err := coachByEmail(ctx, a.Service, email, false)
					if err != nil {
						return err
					}
					actor = core.Actor{CoachID: coach.ID}
				}
				stats, err := a.Service.Stats(ctx, actor)
				if err != nil {
					return err
				}
				printStats(cmd, stats, a.Service.Registration())
				return nil
			})
		},
	}
	cmd.Flags().String("coach", "", "limit to one coach's roster")
	return cmd
}

func printStats(cmd *cobra.Command, s *core.Stats, reg core.RegistrationStatus) {
	out := cmd.OutOrStdout()
	if reg.Countdown != nil {
		fmt.Fprintln(out, yellow(reg.Countdown.String()))
	}
	fmt.Fprintf(out, "%s %d (Saturday %d, Sunday %d)\n", bold("Athletes:"), s.Total, s.Saturday, s.Sunday)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nBELT\tCOUNT")
	for _, b := range core.Belts {
		if n := s.ByBelt[string(b)]; n > 0 {
			fmt.Fprintf(w, "%s\t%d\n", b, n)
		}
	}
	fmt.Fprintln(w, "\nGENDER\tCOUNT")
	genders := make([]string, 0, len(s.ByGender))
	for g := range s.ByGender {
		genders = append(genders, g)
	}
	sort.Strings(genders)
	for _, g := range genders {
		fmt.Fprintf(w, "%s\t%d\n", g, s.ByGender[g])
	}

	if len(s.TopDojos) > 0 {
		fmt.Fprintln(w, "\nDOJO\tCOUNT")
		for _, d := range s.TopDojos {
			fmt.Fprintf(w, "%s\t%d\n", d.Name, d.Count)
		}
	}
	if len(s.Coaches) > 0 {
		fmt.Fprintf(w, "\nCOACH (%d)\tTOTAL\tSAT\tSUN\n", s.CoachCount)
		for _, c := range s.Coaches {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", c.Email, c.Total, c.Saturday, c.Sunday)
		}
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
