package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/entrydesk/internal/migrate"
	"github.com/JonMunkholm/entrydesk/internal/store"
	"github.com/JonMunkholm/entrydesk/internal/store/sqlite"
)

// MigrateCmd copies a SQLite roster into PostgreSQL.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy a SQLite roster into PostgreSQL",
		Long: `migrate reads every coach and athlete from the SQLite database, saves
them to a JSON backup and adds them to the PostgreSQL database. Coaches
that already exist (by email) and athletes that already exist (by
tournament number) are left untouched, so the command can be re-run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			from := mustString(cmd, "from")
			to := mustString(cmd, "to")
			if to == "" {
				to = cfg.Database.URL
			}
			if !strings.HasPrefix(to, "postgres") {
				return fmt.Errorf("target %q is not a PostgreSQL URL; pass --to or set DATABASE_URL", to)
			}
			ctx := cmd.Context()

			src, err := sqlite.Open(ctx, store.SQLitePath(from))
			if err != nil {
				return err
			}
			defer src.Close()

			dst, err := migrate.OpenPostgres(ctx, to)
			if err != nil {
				return err
			}
			defer dst.Close()

			rep, err := migrate.Run(ctx, src.DB(), dst, mustString(cmd, "backup-dir"), logger(cfg))
			out := cmd.OutOrStdout()
			if rep.BackupPath != "" {
				fmt.Fprintf(out, "Backup saved to %s\n", rep.BackupPath)
			}
			if err != nil {
				fmt.Fprintln(out, red("Migration failed; the backup and the SQLite database are unchanged"))
				return err
			}
			fmt.Fprintf(out, "%s coaches: %d imported, %d skipped\n", green("✓"), rep.CoachesImported, rep.CoachesSkipped)
			fmt.Fprintf(out, "%s athletes: %d imported, %d skipped\n", green("✓"), rep.AthletesImported, rep.AthletesSkipped)
			if rep.AthletesOrphaned > 0 {
				fmt.Fprintf(out, "%s %d athletes had no matching coach\n", yellow("!"), rep.AthletesOrphaned)
			}
			return nil
		},
	}
	cmd.Flags().String("from", "sqlite://entrydesk.db", "source SQLite database")
	cmd.Flags().String("to", "", "target PostgreSQL URL (default DATABASE_URL)")
	cmd.Flags().String("backup-dir", ".", "directory for the JSON backup")
	return cmd
}
