// Counts the annotated files and bounding boxes in a directory tree of LabelMe JSON files.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sensorable/lblcount"
)

var (
	srcDirPath   string // The input directory that is scanned for LabelMe files.
	logDirPath   string // The directory holding the count log.
	tfRecordPath string // The optional TFRecord output file.
)

// Environment variables with flag defaults. They may also be set in a .env file.
const (
	envSrcDir   = "LBLCOUNT_SRC_DIR"
	envSrcLog   = "LBLCOUNT_SRC_LOG"
	envTFRecord = "LBLCOUNT_TFRECORD"
)

func init() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage of %s:\n", filepath.Base(os.Args[0]))
		_, _ = fmt.Fprintln(os.Stderr, "  -s|--src_dir <dir> -o|--src_log <dir> [-tfrecord <file>]")
		_, _ = fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}

	_ = godotenv.Load()
	srcDirPath = os.Getenv(envSrcDir)
	logDirPath = os.Getenv(envSrcLog)
	tfRecordPath = os.Getenv(envTFRecord)

	// Path arguments.
	flag.StringVar(&srcDirPath, "src_dir", srcDirPath,
		"The `path` to the directory that is scanned recursively for *.json label files")
	flag.StringVar(&srcDirPath, "s", srcDirPath, "Shorthand for -src_dir")
	flag.StringVar(&logDirPath, "src_log", logDirPath,
		"The `path` to the directory for the "+lblcount.LogFileName+" log file")
	flag.StringVar(&logDirPath, "o", logDirPath, "Shorthand for -src_log")
	flag.StringVar(&tfRecordPath, "tfrecord", tfRecordPath,
		"Optional TFRecord output file `path` for the parsed object annotations")
}

func printUsageAndExit(msg ...interface{}) {
	log.Print(msg...)
	flag.Usage()
	os.Exit(1)
}

// loggerName returns the base name of the working directory.
func loggerName() string {
	wd, err := os.Getwd()
	if err != nil {
		return "lblcount"
	}
	return filepath.Base(wd)
}

func main() {
	flag.Parse()

	// Validate the arguments.
	if srcDirPath == "" || logDirPath == "" {
		printUsageAndExit("Missing -src_dir or -src_log argument")
	}
	if flag.NArg() > 0 {
		printUsageAndExit("Unexpected arguments: ", flag.Args())
	}

	// Clean path arguments.
	srcDirPath = filepath.Clean(srcDirPath)
	logDirPath = filepath.Clean(logDirPath)
	if tfRecordPath != "" {
		tfRecordPath = filepath.Clean(tfRecordPath)
	}

	err := run(srcDirPath, logDirPath, tfRecordPath, loggerName(), os.Stdout, os.Stderr)
	if err != nil {
		log.Fatal("Counting failed: ", err)
	}
}

// run counts the LabelMe files under srcDir, writes the totals to stdout and appends them to the
// count log in logDir. Progress is rendered to progress, which may be nil.
//
// Nothing is written to stdout, and the log is not touched, unless every file parses.
func run(srcDir, logDir, tfRecordPath, name string, stdout, progress io.Writer) (err error) {
	// The source directory is checked before any other file I/O.
	if err := lblcount.CheckDir(srcDir); err != nil {
		return err
	}

	paths, err := lblcount.FindFiles(srcDir, ".json")
	if err != nil {
		return err
	}

	opts := lblcount.CountOptions{Progress: progress}
	if tfRecordPath != "" {
		var w *lblcount.TFRecordWriter
		w, err = lblcount.NewTFRecordWriter(tfRecordPath)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := w.Close(); cerr != nil && err == nil {
				err = cerr
			}
			// Do not leave a partial export behind.
			if err != nil {
				_ = os.Remove(tfRecordPath)
			}
		}()
		opts.Visit = func(_ string, a lblcount.Annotation) error {
			return w.Write(a)
		}
	}

	counts, err := lblcount.Count(paths, opts)
	if err != nil {
		return err
	}

	// The log is only opened once the count is known.
	logger, err := lblcount.NewLogger(name, logDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logger.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return lblcount.Report(stdout, logger, counts)
}
