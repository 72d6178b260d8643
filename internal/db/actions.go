package db

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/llm-web-summarizer/internal/summarize"
	"github.com/dtnitsch/llm-web-summarizer/pkg/analytics"
	dbpkg "github.com/dtnitsch/llm-web-summarizer/pkg/db"
	"github.com/urfave/cli/v2"
)

func openStore(c *cli.Context) (*dbpkg.DB, error) {
	cfg, err := summarize.LoadConfig(c)
	if err != nil {
		return nil, err
	}
	database, err := dbpkg.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// StorageShowAction prints what the background store currently holds.
func StorageShowAction(c *cli.Context) error {
	database, err := openStore(c)
	if err != nil {
		return err
	}
	defer database.Close()

	return WriteReport(c.Context, os.Stdout, database, time.Now())
}

// WriteReport prints the stored keys and the last extraction with its age.
func WriteReport(ctx context.Context, w io.Writer, database *dbpkg.DB, now time.Time) error {
	keys, err := database.Keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	fmt.Fprintf(w, "Database: %s\n", database.Path())
	fmt.Fprintln(w, strings.Repeat("=", 60))

	if len(keys) == 0 {
		fmt.Fprintln(w, "Storage is empty")
		return nil
	}
	fmt.Fprintf(w, "Keys:        %s\n", strings.Join(keys, ", "))

	content, at, ok, err := database.LastExtraction(ctx)
	if err != nil {
		return fmt.Errorf("failed to read last extraction: %w", err)
	}
	if !ok {
		fmt.Fprintln(w, "\nNo extracted content stored")
		return nil
	}

	info := analytics.Measure(content.Text)
	fmt.Fprintf(w, "\nLast extraction:\n")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Type:        %s\n", content.Kind)
	fmt.Fprintf(w, "URL:         %s\n", content.SourceURL)
	if content.Title != "" {
		fmt.Fprintf(w, "Title:       %s\n", content.Title)
	}
	fmt.Fprintf(w, "Extracted:   %s (%s ago)\n", at.Format("2006-01-02 15:04:05"), now.Sub(at).Truncate(time.Second))
	fmt.Fprintf(w, "Size:        %s\n", info)

	return nil
}

// StorageClearAction removes everything from the store.
func StorageClearAction(c *cli.Context) error {
	database, err := openStore(c)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Clear(c.Context); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	fmt.Println("Storage cleared")
	return nil
}
