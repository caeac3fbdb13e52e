package cli

import (
	"encoding/json"
	"fmt"
	"histex/lib/catalog"
	"histex/lib/cnst"
	"histex/lib/extract"
	"histex/lib/structs"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ExtractData runs the full pipeline against one image and prints the
// structured result. A fatal pipeline failure becomes a non-zero exit;
// recoverable failures only show up as a files_found/files_extracted gap.
func ExtractData(imagePath, outputDir, dbpath string, partition int, writeReport, noCatalog bool) error {
	start := time.Now()

	result := extract.Run(extract.Options{
		ImagePath: imagePath,
		OutputDir: outputDir,
		Partition: partition,
	})

	if err := printJSON(result); err != nil {
		return err
	}

	if !result.Success {
		return errors.New(result.Error)
	}

	if writeReport {
		report, err := json.MarshalIndent(result, "", "\t")
		if err != nil {
			return err
		}
		reportPath := filepath.Join(outputDir, cnst.ReportName)
		if err := os.WriteFile(reportPath, report, 0o644); err != nil {
			return err
		}
	}

	if !noCatalog {
		if err := saveToCatalog(result, dbpath); err != nil {
			// The artifacts are already on disk; a broken catalog must not
			// turn a finished extraction into a failed run.
			logrus.WithError(err).Warn("could not catalog the run")
		}
	}

	if result.FilesExtracted < result.FilesFound {
		color.Yellow("%d of %d found artifacts could not be extracted", result.FilesFound-result.FilesExtracted, result.FilesFound)
	}
	color.Green("extracted %d artifact(s) into %s", result.FilesExtracted, outputDir)
	fmt.Println("Done in:", time.Since(start))
	return nil
}

func saveToCatalog(result *structs.RunResult, dbpath string) error {
	db, err := connectCatalog(dbpath)
	if err != nil {
		return err
	}
	if err := catalog.SaveRun(result, db); err != nil {
		db.Close()
		return err
	}
	return db.Close()
}
