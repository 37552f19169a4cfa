package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/entrydesk/internal/app"
	"github.com/JonMunkholm/entrydesk/internal/core"
)

// ImportCmd loads a roster spreadsheet for a coach.
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a CSV or XLSX roster for a coach",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("coach")
			preview, _ := cmd.Flags().GetBool("preview")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			name := filepath.Base(args[0])

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				coach, err := coachByEmail(ctx, a.Service, email, !preview)
				if err != nil {
					return err
				}

				var res *core.UploadResult
				if preview {
					res, err = a.Service.PreviewSheet(ctx, organizer, coach.ID, name, data)
				} else {
					res, err = a.Service.UploadSheet(ctx, organizer, coach.ID, name, data)
				}
				if res != nil {
					printUpload(cmd, res, preview)
				}
				return err
			})
		},
	}
	cmd.Flags().String("coach", "", "email of the coach who owns the roster")
	cmd.Flags().Bool("preview", false, "validate without importing")
	_ = cmd.MarkFlagRequired("coach")
	return cmd
}

func printUpload(cmd *cobra.Command, res *core.UploadResult, preview bool) {
	out := cmd.OutOrStdout()
	verb := "Imported"
	if preview {
		verb = "Would import"
	}
	fmt.Fprintf(out, "%s %s athletes from %s\n", verb, green(res.Accepted), res.FileName)
	for _, a := range res.Athletes {
		if a.UniqueID != 0 {
			fmt.Fprintf(out, "  #%d  %s (%s, %s)\n", a.UniqueID, a.Name, a.Belt, a.Day)
		}
	}
	if res.Rejected > 0 || len(res.Errors) > 0 {
		fmt.Fprintf(out, "%s %d rows\n", yellow("Skipped"), res.Rejected)
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  %s %s\n", red("✗"), e)
		}
	}
}

// ExportCmd writes the roster to a file.
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export registered athletes",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := core.ParseFormat(mustString(cmd, "format"))
			out := mustString(cmd, "out")
			email := mustString(cmd, "coach")
			if out == "" {
				out = "athletes." + string(format)
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				actor := organizer
				if email != "" {
					coach, err := coachByEmail(ctx, a.Service, email, false)
					if err != nil {
						return err
					}
					actor = core.Actor{CoachID: coach.ID}
				}
				return writeFile(cmd, out, func(f *os.File) error {
					return a.Service.Export(ctx, f, actor, format)
				})
			})
		},
	}
	cmd.Flags().String("format", "xlsx", "csv or xlsx")
	cmd.Flags().StringP("out", "o", "", "output file (default athletes.<format>)")
	cmd.Flags().String("coach", "", "export one coach's roster instead of every roster")
	return cmd
}

// TemplateCmd writes the blank upload template.
func TemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the blank upload template",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := core.ParseFormat(mustString(cmd, "format"))
			out := mustString(cmd, "out")
			if out == "" {
				out = "athlete_template." + string(format)
			}
			return writeFile(cmd, out, func(f *os.File) error {
				return core.WriteTemplate(f, format)
			})
		},
	}
	cmd.Flags().String("format", "xlsx", "csv or xlsx")
	cmd.Flags().StringP("out", "o", "", "output file (default athlete_template.<format>)")
	return cmd
}

func writeFile(cmd *cobra.Command, path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("Wrote"), path)
	return nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
