package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mmcdole/marquee/internal/platform"
	"github.com/mmcdole/marquee/internal/service"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List the saved titles in the cloud library",
	RunE:  libraryRun,
}

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "List the series in the cloud library",
	RunE:  seriesRun,
}

var issuesCmd = &cobra.Command{
	Use:   "issues <series-id>",
	Short: "List the issues of a cloud library series",
	Args:  cobra.ExactArgs(1),
	RunE:  issuesRun,
}

func init() {
	libraryCmd.AddCommand(seriesCmd)
	libraryCmd.AddCommand(issuesCmd)
}

func newLibraryService(ctx context.Context) (*service.LibraryService, error) {
	caps, err := platform.Resolve(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve platform: %w", err)
	}
	return service.NewLibraryService(caps.CloudAPI(), cfg.Cloud.CacheTTL, nil, logger), nil
}

func libraryRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	svc, err := newLibraryService(ctx)
	if err != nil {
		return err
	}
	entries, err := svc.Library(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Your library is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tTITLE\tADDED")
	for _, e := range entries {
		title := "(unknown)"
		if e.Series != nil {
			title = e.Series.Title
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.SeriesID, title, e.AddedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func seriesRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	svc, err := newLibraryService(ctx)
	if err != nil {
		return err
	}
	series, err := svc.Series(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPUBLISHER\tYEAR")
	for _, s := range series {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", s.ID, s.Title, s.Publisher, s.Year)
	}
	return w.Flush()
}

func issuesRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	svc, err := newLibraryService(ctx)
	if err != nil {
		return err
	}
	issues, err := svc.Issues(ctx, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tTITLE")
	for _, is := range issues {
		fmt.Fprintf(w, "%d\t%s\n", is.Number, is.Title)
	}
	return w.Flush()
}
