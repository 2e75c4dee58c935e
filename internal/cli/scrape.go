package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/extract"
	"github.com/mesh-intelligence/docket/internal/navigate"
	"github.com/mesh-intelligence/docket/internal/remote/htmlpage"
	"github.com/mesh-intelligence/docket/internal/staging"
	"github.com/mesh-intelligence/docket/pkg/types"
)

type scrapeFlags struct {
	startURL string
	dryRun   bool
	maxPages int
}

func newScrapeCmd(a *app) *cobra.Command {
	var f scrapeFlags
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Walk the results portal and stage every case",
		Long: "Open the results page at the start URL, visit every row's detail view,\n" +
			"and append each extracted case to the staging file. Rows that cannot be\n" +
			"read are skipped. Interrupting keeps every case staged so far.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScrape(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.startURL, "start-url", "", "results page to start from (overrides remote.start_url)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "extract without touching the staging file")
	cmd.Flags().IntVar(&f.maxPages, "max-pages", -1, "stop after this many pages (overrides navigation.max_pages)")
	return cmd
}

type scrapeReport struct {
	Extracted   int    `json:"extracted"`
	Skipped     int    `json:"skipped"`
	Pages       int    `json:"pages"`
	State       string `json:"state"`
	StagingFile string `json:"staging_file,omitempty"`
	DryRun      bool   `json:"dry_run"`
}

func (a *app) runScrape(cmd *cobra.Command, f scrapeFlags) error {
	ctx := cmd.Context()
	start := f.startURL
	if start == "" {
		start = a.cfg.Remote.StartURL
	}
	if start == "" {
		return userErrorf("no start URL: pass --start-url or set remote.start_url")
	}
	if err := a.cfg.Navigation.Validate(); err != nil {
		return &userError{err: err}
	}
	navCfg := a.cfg.Navigation
	if f.maxPages >= 0 {
		navCfg.MaxPages = f.maxPages
	}

	session, err := htmlpage.New(htmlpage.OptionsFromConfig(a.cfg.Remote, a.logger))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if err := session.Open(ctx, start); err != nil {
		return fmt.Errorf("open results page: %w", err)
	}

	var buf types.StagingBuffer
	report := scrapeReport{DryRun: f.dryRun}
	if f.dryRun {
		buf = staging.NewMemoryBuffer()
	} else {
		buf = a.buffer()
		report.StagingFile = a.stagingPath
	}

	ex := extract.New(buf, extract.Options{
		HistoryTimeout:      navCfg.HistoryTimeout,
		ParticipantsTimeout: navCfg.ParticipantsTimeout,
	}, a.logger)
	nav := navigate.New(session, ex, navigate.OptionsFromConfig(navCfg), a.logger)

	stats, err := nav.Traverse(ctx)
	report.Extracted = stats.Extracted
	report.Skipped = stats.Skipped
	report.Pages = stats.Pages
	report.State = stats.State.String()
	if perr := a.printScrapeReport(cmd, report); perr != nil {
		return perr
	}
	if err != nil {
		return fmt.Errorf("traversal interrupted: %w", err)
	}
	return nil
}

func (a *app) printScrapeReport(cmd *cobra.Command, r scrapeReport) error {
	if a.jsonOut {
		return json.NewEncoder(out(cmd)).Encode(r)
	}
	fmt.Fprintf(out(cmd), "extracted %d cases, skipped %d rows, %d pages\n", r.Extracted, r.Skipped, r.Pages)
	if r.DryRun {
		fmt.Fprintln(out(cmd), "dry run: nothing staged")
	} else {
		fmt.Fprintf(out(cmd), "staged in %s\n", r.StagingFile)
	}
	return nil
}
