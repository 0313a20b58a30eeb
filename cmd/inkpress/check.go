package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/inkpress/content"
)

func checkCmd() *cobra.Command {
	var wpm int

	cmd := &cobra.Command{
		Use:   "check [content-dir]",
		Short: "Validate a content directory",
		Long: `Check parses every Markdown post in the content directory and reports
files that fail to parse, posts missing a summary, and posts dated in
the future. The command exits nonzero only on parse failures; the rest
are warnings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "content"
			if len(args) > 0 {
				dir = args[0]
			}
			return runCheck(dir, wpm)
		},
	}

	cmd.Flags().IntVar(&wpm, "wpm", content.DefaultWordsPerMinute, "words per minute for reading time")
	return cmd
}

func runCheck(dir string, wpm int) error {
	posts, problems, err := content.LoadDir(dir, wpm)
	if err != nil {
		return err
	}

	for _, p := range problems {
		logger.Error("parse failed", "file", p.Path, "err", p.Err)
	}

	now := time.Now()
	drafts := 0
	for _, p := range posts {
		if p.Draft {
			drafts++
		}
		if p.Summary == "" {
			logger.Warn("missing summary", "file", p.SourcePath, "slug", p.Slug)
		}
		if p.Date.After(now) {
			logger.Warn("future-dated post will be publicly visible",
				"file", p.SourcePath, "date", p.Date.Format("2006-01-02"))
		}
	}

	logger.Info("check complete",
		"posts", len(posts), "drafts", drafts, "errors", len(problems))

	if len(problems) > 0 {
		return fmt.Errorf("%d file(s) failed to parse", len(problems))
	}
	return nil
}
