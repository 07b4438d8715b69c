package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/patchline/patchline/internal/config"
	"github.com/patchline/patchline/internal/fileio"
	"github.com/patchline/patchline/internal/logging"
	"github.com/patchline/patchline/internal/patch"
	"github.com/patchline/patchline/internal/tui"
	"github.com/patchline/patchline/internal/ui"
)

// Version info set by ldflags at build time
var (
	version    = "dev"
	commitHash = "dev"
)

func main() {
	configPath := flag.String("config", "patchline.yaml", "path to config file")
	specPath := flag.String("spec", "-", "path to the diff spec file ('-' for stdin)")
	threshold := flag.Float64("threshold", 0, "override similarity threshold (0..1, 1 = exact only)")
	logPath := flag.String("log", "", "log file path (overrides config)")
	dryRun := flag.Bool("dry-run", false, "resolve and report, but do not write the file")
	yes := flag.Bool("yes", false, "apply without asking for confirmation")
	review := flag.Bool("review", false, "open the interactive review screen before applying")
	quiet := flag.Bool("quiet", false, "only print the summary line")
	noColor := flag.Bool("no-color", false, "disable colored output")
	showFormat := flag.Bool("format", false, "print the diff format description and exit")
	showVersion := flag.Bool("version", false, "show version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s-%s\n", version, commitHash)
		return
	}
	if *showFormat {
		fmt.Println(patch.DescribeFormat())
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: patchline [flags] <file>")
		flag.Usage()
		os.Exit(2)
	}
	target := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *threshold > 0 {
		cfg.Engine.FuzzyThreshold = *threshold
	}
	if *logPath != "" {
		cfg.Log.Path = *logPath
	}

	logger, err := logging.New(cfg.Log.Path, cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	w := ui.NewWriter(os.Stdout, *quiet, *noColor)

	specText, err := readSpec(*specPath)
	if err != nil {
		w.Errorf("read spec: %v", err)
		os.Exit(1)
	}
	content, err := fileio.ReadFile(target)
	if err != nil {
		w.Errorf("%v", err)
		os.Exit(1)
	}

	applier := patch.NewApplier(patch.Options{
		Threshold:       cfg.Engine.FuzzyThreshold,
		BufferLines:     cfg.Engine.BufferLines,
		ExtractDeadline: time.Duration(cfg.Engine.ExtractDeadlineMs) * time.Millisecond,
		Logger:          logger,
	})

	outcome := applier.Apply(context.Background(), content, specText)

	if !outcome.Applied {
		w.Summary(specText, &outcome)
		w.Reports(outcome.Reports)
		if outcome.Error != "" {
			w.Errorf("%s", outcome.Error)
		}
		os.Exit(1)
	}

	diff, err := patch.UnifiedDiff(content, outcome.Content, target)
	if err != nil {
		logger.Warn("diff generation failed", zap.Error(err))
	}

	w.Summary(specText, &outcome)
	w.Reports(outcome.Reports)

	if *review {
		if err := tui.Review(specText, outcome, diff); err != nil {
			w.Errorf("review: %v", err)
			os.Exit(1)
		}
	} else if !*quiet && diff != "" {
		w.Diff(diff)
	}

	if *dryRun {
		w.Infof("dry run: %s not modified", target)
		return
	}

	if !*yes {
		ok, err := ui.Confirm(fmt.Sprintf("Apply changes to %s?", target))
		if err != nil {
			w.Errorf("confirm: %v", err)
			os.Exit(1)
		}
		if !ok {
			w.Infof("aborted, %s not modified", target)
			return
		}
	}

	lock, err := fileio.AcquireLock(target)
	if err != nil {
		w.Errorf("%v", err)
		os.Exit(1)
	}
	defer lock.Release()

	if err := fileio.WriteFileAtomic(target, outcome.Content); err != nil {
		w.Errorf("%v", err)
		os.Exit(1)
	}
	w.Infof("wrote %s", target)
}

// readSpec reads the diff text from a file or stdin.
func readSpec(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return fileio.ReadFile(path)
}
