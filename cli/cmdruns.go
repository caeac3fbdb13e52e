package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"histex/lib/catalog"
)

// RunsData lists every catalogued extraction run, or prints one run in full
// when runID is given.
func RunsData(dbpath, runID string) error {
	db, err := connectCatalog(dbpath)
	if err != nil {
		return err
	}
	defer db.Close()

	if runID != "" {
		run, err := catalog.GetRun(runID, db)
		if err != nil {
			return err
		}
		return printJSON(run)
	}

	summaries, err := catalog.ListRuns(db)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("no catalogued runs")
		return nil
	}

	for _, summary := range summaries {
		color.Cyan(summary.RunID)
		fmt.Printf("\tImage: %s\n", summary.ImagePath)
		fmt.Printf("\tFound: %d\tExtracted: %d\n", summary.FilesFound, summary.FilesExtracted)
		fmt.Printf("\tWhen: %s\n", humanize.Time(summary.CreatedAt))
	}
	return nil
}
