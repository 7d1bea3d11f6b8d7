package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/user/image-organizer/pkg"
)

var (
	flatMode  bool
	pattern   string
	sizeLimit int64
	verbose   bool
	noReport  bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "picman SOURCE DEST",
		Short: "Copy images into a date-organized directory tree",
		Long: `picman scans SOURCE recursively for image files, determines the date each
was taken (EXIF DateTimeOriginal, falling back to the file's modification
time) and copies them under DEST/YYYY/MM/DD. Source files are never modified
or removed, and existing destination files are never overwritten; name
collisions get an incrementing "_N" suffix.

With --flat, files are copied directly into DEST with no date folders.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runOrganize(ctx, args[0], args[1])
		},
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&flatMode, "flat", false, "copy files directly into DEST without date folders")
	cmd.Flags().StringVar(&pattern, "pattern", "", "glob filter applied to paths relative to SOURCE (e.g. '2023/**/*.jpg')")
	cmd.Flags().Int64Var(&sizeLimit, "size-limit", 0, "when > 0, also list files larger than this many bytes")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVar(&noReport, "no-report", false, "do not write report.txt into DEST")
	return cmd
}

// setupLogging configures zerolog based on flags.
func setupLogging() {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
	log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
}

func runOrganize(ctx context.Context, sourceDir, destDir string) error {
	info, err := os.Stat(sourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source directory '%s' does not exist", sourceDir)
		}
		return fmt.Errorf("could not stat source directory '%s': %w", sourceDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source path '%s' is not a directory", sourceDir)
	}

	mode := pkg.ModeByDate
	if flatMode {
		mode = pkg.ModeFlat
	}

	images, err := pkg.ScanSourceDirectory(sourceDir, pattern)
	if err != nil {
		return err
	}
	fmt.Printf("Total images found: %d\n", len(images))

	records := pkg.ResolveRecords(images)
	index := pkg.BuildIndex(records, mode)

	var progress pkg.ProgressFunc
	var bar *pterm.ProgressbarPrinter
	if len(images) > 0 {
		bar, _ = pterm.DefaultProgressbar.WithTotal(len(images)).WithTitle("Copying").Start()
		progress = func(processed, total int) {
			if bar != nil {
				bar.Increment()
			}
		}
	}

	summary, runErr := pkg.Materialize(ctx, index, destDir, progress)
	if bar != nil {
		bar.Stop()
	}
	if runErr != nil {
		if ctx.Err() != nil {
			color.Yellow("Aborted: %d of %d file(s) copied before cancellation.", summary.Copied, summary.Found)
			return runErr
		}
		// Structural failure of the destination, nothing more can be done.
		return fmt.Errorf("cannot write to destination: %w", runErr)
	}

	printSummary(summary)

	if !noReport {
		reportPath := filepath.Join(destDir, "report.txt")
		if err := pkg.WriteReport(reportPath, summary); err != nil {
			log.Warn().Err(err).Msg("failed to write report")
		} else {
			fmt.Printf("Report written to %s\n", reportPath)
		}
	}

	if sizeLimit > 0 {
		large := pkg.FilterImagesBySize(images, sizeLimit)
		fmt.Printf("Found %d image(s) larger than %d bytes:\n", len(large), sizeLimit)
		for _, path := range large {
			fmt.Printf("  %s\n", path)
		}
	}
	return nil
}

func printSummary(s *pkg.Summary) {
	color.Green("Image organization completed (%s mode).", s.Mode)
	fmt.Printf("  Found:      %d\n", s.Found)
	fmt.Printf("  Classified: %d\n", s.Classified)
	fmt.Printf("  Copied:     %d\n", s.Copied)
	if len(s.Skipped) > 0 {
		color.Yellow("  Skipped:    %d", len(s.Skipped))
		for _, sk := range s.Skipped {
			fmt.Printf("    %s (%s)\n", sk.Path, sk.Reason)
		}
	} else {
		fmt.Printf("  Skipped:    0\n")
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
