package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bilgisen/zenstudio/internal/app"
	"github.com/bilgisen/zenstudio/internal/checklist"
	"github.com/bilgisen/zenstudio/internal/config"
	"github.com/bilgisen/zenstudio/internal/export"
	"github.com/bilgisen/zenstudio/internal/logger"
)

var (
	projectPath string
	outDir      string
	upload      bool
	debugMode   bool
	title       string
)

var rootCmd = &cobra.Command{
	Use:          "zenctl",
	Short:        "Manage ZenStudio projects from the command line",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if debugMode {
			level = "debug"
		}
		logger.Init(logger.Config{Level: level, Output: "stderr", Pretty: true})
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Installation config",
}

var configEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create the app root and config if missing and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			info, err := a.Projects.Ensure(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(info)
		})
	},
}

var configForgetCmd = &cobra.Command{
	Use:   "forget <path>",
	Short: "Remove a project from the recent projects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			info, err := a.Projects.RemoveProjectPath(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(info.Config)
		})
	},
}

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Article index",
}

var articlesRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rescan the project for markdown files and rebuild the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			list, err := a.Articles.Rebuild(cmd.Context(), projectPath)
			if err != nil {
				return err
			}
			for _, article := range list {
				fmt.Printf("%s\t%s\t%s\n", article.ID, article.FileName, article.Title)
			}
			fmt.Fprintf(os.Stderr, "%d articles indexed\n", len(list))
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:       "export calendar|markdown|csv|pdf",
	Short:     "Export the project's schedule",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"calendar", "markdown", "csv", "pdf"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			return runExport(cmd.Context(), a, format)
		})
	},
}

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Publishing checklist",
}

var checklistExportCmd = &cobra.Command{
	Use:       "export markdown|csv|xlsx",
	Short:     "Export the project's checklist",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"markdown", "csv", "xlsx"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			items := a.Checklist.Load(cmd.Context(), checklist.TasksForPlatform(""), projectPath)
			doc, err := checklist.Render(args[0], items, title)
			if err != nil {
				return err
			}
			return deliver(cmd.Context(), a, doc.FileName(), doc.ContentType, doc.Data)
		})
	},
}

func runExport(ctx context.Context, a *app.App, format export.Format) error {
	var (
		data []byte
		err  error
	)
	if format == export.FormatCalendar {
		data, err = export.RenderCalendar(a.Schedule.Load(ctx, projectPath).Posts, a.Calendar())
	} else {
		in := a.Handlers().ProjectPayload(ctx, projectPath)
		in.GeneratedAt = time.Now()
		data, err = export.Render(format, export.BuildPayload(in))
	}
	if err != nil {
		return err
	}
	return deliver(ctx, a, format.FileName(time.Now()), format.ContentType(), data)
}

// deliver writes data to --out, or to the configured sink with --upload.
func deliver(ctx context.Context, a *app.App, name, contentType string, data []byte) error {
	sink := app.LocalSink(outDir)
	if upload {
		if a.Sink == nil {
			return fmt.Errorf("upload requested but neither ZEN_S3_BUCKET nor ZEN_EXPORT_WEBHOOK_URL is set")
		}
		sink = a.Sink
	}

	location, err := sink.Deliver(ctx, name, contentType, data)
	if err != nil {
		return err
	}
	fmt.Println(location)
	return nil
}

func withApp(ctx context.Context, fn func(*app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	articlesRebuildCmd.Flags().StringVar(&projectPath, "project", "", "Project directory")
	_ = articlesRebuildCmd.MarkFlagRequired("project")

	exportCmd.Flags().StringVar(&projectPath, "project", "", "Project directory")
	exportCmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	exportCmd.Flags().BoolVar(&upload, "upload", false, "Upload to the configured bucket or webhook instead")
	_ = exportCmd.MarkFlagRequired("project")

	checklistExportCmd.Flags().StringVar(&projectPath, "project", "", "Project directory")
	checklistExportCmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	checklistExportCmd.Flags().StringVar(&title, "title", "", "Document title")
	checklistExportCmd.Flags().BoolVar(&upload, "upload", false, "Upload to the configured bucket or webhook instead")

	configCmd.AddCommand(configEnsureCmd, configForgetCmd)
	articlesCmd.AddCommand(articlesRebuildCmd)
	checklistCmd.AddCommand(checklistExportCmd)
	rootCmd.AddCommand(configCmd, articlesCmd, checklistCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
