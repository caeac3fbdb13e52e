package main

import (
	"fmt"
	"histex/cli"
	"histex/lib/cnst"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	app := kingpin.New("histex", "PowerShell ConsoleHost history extractor for forensic disk images")
	app.Version("histex v" + cnst.Version)
	dbpath := app.Flag(cnst.FlagDBPath, "Custom path for the run catalog").Short(cnst.FlagDBPathShort).String()
	verbose := app.Flag(cnst.FlagVerbose, "Enable debug logging").Short(cnst.FlagVerboseShort).Default("false").Bool()

	cmdextract := app.Command(cnst.CmdExtract, "Extract ConsoleHost histories from a disk image")
	imagePath := cmdextract.Arg(cnst.OperandImage, "Path of the raw or EWF image to scan").Required().String()
	outputDir := cmdextract.Flag(cnst.FlagOutput, "Directory for extracted history files").Short(cnst.FlagOutputShort).Default("extracted").String()
	partition := cmdextract.Flag(cnst.FlagPartition, "Restrict the scan to one partition index").Short(cnst.FlagPartitionShort).Default("-1").Int()
	report := cmdextract.Flag(cnst.FlagReport, "Also write extraction_report.json into the output directory").Short(cnst.FlagReportShort).Default("false").Bool()
	noCatalog := cmdextract.Flag(cnst.FlagNoCatalog, "Don't record this run in the catalog").Default("false").Bool()

	cmdparse := app.Command(cnst.CmdParse, "Parse an already-extracted ConsoleHost_history.txt")
	filePath := cmdparse.Arg(cnst.OperandFile, "Path of the history file").Required().String()
	includeEmpty := cmdparse.Flag(cnst.FlagIncludeEmpty, "Keep empty lines as empty command records").Default("false").Bool()

	cmdruns := app.Command(cnst.CmdRuns, "List catalogued extraction runs")
	runID := cmdruns.Arg(cnst.OperandRunID, "Show one run's full stored result").String()

	cmdinfo := app.Command(cnst.CmdInfo, "Print the capability report")

	cmdreset := app.Command(cnst.CmdReset, "Delete the run catalog")

	parsed := kingpin.MustParse(app.Parse(os.Args[1:]))

	logrus.SetLevel(logrus.WarnLevel)
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var err error
	switch parsed {
	case cmdextract.FullCommand():
		err = cli.ExtractData(*imagePath, *outputDir, *dbpath, *partition, *report, *noCatalog)
	case cmdparse.FullCommand():
		err = cli.ParseData(*filePath, *includeEmpty)
	case cmdruns.FullCommand():
		err = cli.RunsData(*dbpath, *runID)
	case cmdinfo.FullCommand():
		err = cli.InfoData()
	case cmdreset.FullCommand():
		err = cli.ResetData(*dbpath)
	}

	handle(err)
}

func handle(err error) {
	if err != nil {
		fmt.Printf("\n\n %v \n\n", err)
		os.Exit(1)
	}
}
