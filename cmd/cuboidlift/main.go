// Command cuboidlift lifts 2D detections into 2.5D cuboid poses.
//
// Subcommands:
//
//	lift    - single-frame lift from a JSON payload
//	batch   - concurrent multi-file sequence lift
//	plot    - render a sequence report's trajectory to PNG/HTML
//	history - list past runs recorded in the run-history store
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/fieldvector/cuboidlift/internal/feed"
	"github.com/fieldvector/cuboidlift/internal/lift"
	"github.com/fieldvector/cuboidlift/internal/obslog"
	"github.com/fieldvector/cuboidlift/internal/report"
	"github.com/fieldvector/cuboidlift/internal/security"
	"github.com/fieldvector/cuboidlift/internal/store"
	"github.com/fieldvector/cuboidlift/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("cuboidlift %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	case "lift":
		err = runLift(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:])
	case "plot":
		err = runPlot(os.Args[2:])
	case "history":
		err = runHistory(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		obslog.Logf("cuboidlift: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cuboidlift <lift|batch|plot|history|version> [flags]")
}

func readPayload(path string) (map[string]interface{}, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	var payload map[string]interface{}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return payload, nil
}

func writeJSON(v interface{}, pretty bool) error {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func runLift(args []string) error {
	fs := flag.NewFlagSet("lift", flag.ExitOnError)
	inputJSON := fs.String("input-json", "", "path to the input JSON payload (default: stdin)")
	mode := fs.String("mode", "single", "single or sequence")
	pretty := fs.Bool("pretty", false, "pretty-print JSON output")
	dbFile := fs.String("db", "", "optional sqlite file to record this run in")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload, err := readPayload(*inputJSON)
	if err != nil {
		return err
	}

	var out interface{}
	var frameCount int
	var meanL1, maxL1 *float64

	switch *mode {
	case "single":
		res, err := lift.LiftSingle(payload)
		if err != nil {
			return err
		}
		out = res
		frameCount = 1
		if res.Result.Fit.ErrorL1 != nil {
			meanL1 = res.Result.Fit.ErrorL1
			maxL1 = res.Result.Fit.ErrorL1
		}
	case "sequence":
		res, err := lift.LiftSequence(payload)
		if err != nil {
			return err
		}
		out = res
		frameCount = res.Summary.FrameCount
		meanL1 = res.Summary.FitErrorMeanL1
		maxL1 = res.Summary.FitErrorMaxL1
	default:
		return fmt.Errorf("unknown mode %q (want single or sequence)", *mode)
	}

	if *dbFile != "" {
		if err := security.ValidateExportPath(*dbFile); err != nil {
			return err
		}
		db, err := store.Open(*dbFile)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := db.InsertRun(store.RunRecord{
			Mode:           *mode,
			FrameCount:     frameCount,
			FitErrorMeanL1: meanL1,
			FitErrorMaxL1:  maxL1,
			InputSummary:   *inputJSON,
		}); err != nil {
			return err
		}
	}

	return writeJSON(out, *pretty)
}

func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	mode := fs.String("mode", "sequence", "single or sequence")
	concurrency := fs.Int("concurrency", 4, "max concurrent files")
	pretty := fs.Bool("pretty", false, "pretty-print JSON output")
	jsonlFile := fs.String("jsonl", "", "stream frame records from a newline-delimited JSON file instead of whole-payload files")
	cameraJSON := fs.String("camera-json", "", "path to the shared camera object (required with --jsonl)")
	objectJSON := fs.String("object-json", "", "path to the shared object definition (required with --jsonl)")
	configJSON := fs.String("config-json", "", "optional path to the shared solver config (used with --jsonl)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *jsonlFile != "" {
		return runBatchJSONL(*jsonlFile, *cameraJSON, *objectJSON, *configJSON, *pretty)
	}

	files := fs.Args()
	if len(files) == 0 {
		return fmt.Errorf("batch: at least one input file is required")
	}

	results := make([]interface{}, len(files))
	errs := make([]error, len(files))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			payload, err := readPayload(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			switch *mode {
			case "single":
				res, err := lift.LiftSingle(payload)
				if err != nil {
					errs[i] = err
					return nil
				}
				results[i] = res
			case "sequence":
				res, err := lift.LiftSequence(payload)
				if err != nil {
					errs[i] = err
					return nil
				}
				results[i] = res
			default:
				return fmt.Errorf("unknown mode %q (want single or sequence)", *mode)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	type fileResult struct {
		File   string      `json:"file"`
		Result interface{} `json:"result,omitempty"`
		Error  string      `json:"error,omitempty"`
	}
	out := make([]fileResult, len(files))
	for i, path := range files {
		fr := fileResult{File: path}
		if errs[i] != nil {
			fr.Error = errs[i].Error()
		} else {
			fr.Result = results[i]
		}
		out[i] = fr
	}
	return writeJSON(out, *pretty)
}

// runBatchJSONL streams per-frame detection records from a newline-delimited
// JSON file through feed.JSONLFeed, assembling a single sequence payload
// against a shared camera/object/config and lifting it in one call. This is
// the streaming counterpart to the whole-payload-per-file mode above, for
// callers that already have a running detection log rather than discrete
// sequence files.
func runBatchJSONL(jsonlPath, cameraPath, objectPath, configPath string, pretty bool) error {
	if cameraPath == "" || objectPath == "" {
		return fmt.Errorf("batch --jsonl requires --camera-json and --object-json")
	}

	cameraRaw, err := readPayload(cameraPath)
	if err != nil {
		return fmt.Errorf("batch: camera-json: %w", err)
	}
	objectRaw, err := readPayload(objectPath)
	if err != nil {
		return fmt.Errorf("batch: object-json: %w", err)
	}
	configRaw := map[string]interface{}{}
	if configPath != "" {
		configRaw, err = readPayload(configPath)
		if err != nil {
			return fmt.Errorf("batch: config-json: %w", err)
		}
	}

	f, err := os.Open(jsonlPath)
	if err != nil {
		return fmt.Errorf("batch: open %s: %w", jsonlPath, err)
	}
	defer f.Close()

	src := feed.NewJSONLFeed(f)
	ctx := context.Background()
	var frames []interface{}
	for {
		frame, ok, err := src.Next(ctx)
		if err != nil {
			return fmt.Errorf("batch: %s: %w", jsonlPath, err)
		}
		if !ok {
			break
		}
		frames = append(frames, frame)
	}

	res, err := lift.LiftSequence(map[string]interface{}{
		"camera": cameraRaw,
		"object": objectRaw,
		"config": configRaw,
		"frames": frames,
	})
	if err != nil {
		return err
	}
	return writeJSON(res, pretty)
}

func runPlot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	inputJSON := fs.String("input-json", "", "path to a sequence report JSON file (default: stdin)")
	outPath := fs.String("out", "trajectory.png", "output file path (.png or .html)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := security.ValidateExportPath(*outPath); err != nil {
		return err
	}

	payload, err := readPayload(*inputJSON)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var seq lift.SequenceReport
	if err := json.Unmarshal(raw, &seq); err != nil {
		return fmt.Errorf("plot: expected a sequence report: %w", err)
	}

	switch filepath.Ext(*outPath) {
	case ".html":
		return report.TrajectoryHTML(&seq, *outPath)
	default:
		return report.TrajectoryPlotPNG(&seq, *outPath)
	}
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dbFile := fs.String("db", "cuboidlift.sqlite", "path to the run-history sqlite file")
	limit := fs.Int("limit", 20, "max number of runs to list")
	pretty := fs.Bool("pretty", false, "pretty-print JSON output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := security.ValidateExportPath(*dbFile); err != nil {
		return err
	}

	db, err := store.Open(*dbFile)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRecentRuns(*limit)
	if err != nil {
		return err
	}
	return writeJSON(runs, *pretty)
}
