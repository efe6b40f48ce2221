package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blockstack.ai/internal/eval"
	"blockstack.ai/internal/persistence/resultdb"
	"blockstack.ai/internal/persistence/runlog"
	"blockstack.ai/internal/sim/tuning"
	"blockstack.ai/internal/transport/observer"
)

func main() {
	var (
		visual    = flag.Bool("v", false, "serve the scene observer stream while evaluating")
		sleepSec  = flag.Int("s", 0, "sleep duration in seconds between plan steps (observer pacing)")
		breakAt   = flag.String("b", "p06", "domain at which to stop each run; 'none' runs all experiments")
		configDir = flag.String("configs", "./configs", "config directory")
		gtPath    = flag.String("ground_truths", "", "ground-truth JSON (default from tuning)")
		plansPath = flag.String("plans", "", "plans JSON (default from tuning)")
		dbPath    = flag.String("db", "", "SQLite results index path (optional)")
		logDir    = flag.String("logdir", "", "run log directory (optional)")
		listen    = flag.String("listen", "127.0.0.1:8090", "observer listen address (with -v)")
		methods   = flag.String("methods", "", "comma-separated method filter (default from tuning)")
		runs      = flag.String("runs", "", "comma-separated run filter (default from tuning)")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := tuning.Load(filepath.Join(*configDir, "tuning.yaml"))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("tuning: %v", err)
		}
		cfg = tuning.Default()
	}
	if *gtPath == "" {
		*gtPath = cfg.GroundTruthFile
	}
	if *plansPath == "" {
		*plansPath = cfg.PlansFile
	}

	ds, err := eval.LoadDataset(*gtPath, *plansPath)
	if err != nil {
		logger.Fatalf("load dataset: %v", err)
	}

	ev := &eval.Evaluation{
		Data:      ds,
		Tolerance: cfg.AboveTolerance,
		Warnf:     logger.Printf,
	}

	if *breakAt != "" && !strings.EqualFold(*breakAt, "none") {
		ev.BreakAt = *breakAt
	}

	if *visual {
		obs := observer.NewServer(logger)
		mux := http.NewServeMux()
		mux.HandleFunc("/observer/v1/ws", obs.WSHandler())
		go func() {
			logger.Printf("observer listening on ws://%s/observer/v1/ws", *listen)
			if err := http.ListenAndServe(*listen, mux); err != nil {
				logger.Printf("observer: %v", err)
			}
		}()
		ev.Observer = obs
		sleep := time.Duration(*sleepSec) * time.Second
		if sleep == 0 {
			sleep = time.Duration(cfg.StepSleepMs) * time.Millisecond
		}
		ev.StepSleep = sleep
	}

	if *logDir != "" {
		w, err := runlog.NewWriter(*logDir)
		if err != nil {
			logger.Fatalf("runlog: %v", err)
		}
		defer w.Close()
		logger.Printf("writing run log to %s", w.Path())
		ev.Sinks = append(ev.Sinks, w)
	}
	if *dbPath != "" {
		db, err := resultdb.Open(*dbPath)
		if err != nil {
			logger.Fatalf("resultdb: %v", err)
		}
		defer db.Close()
		ev.Sinks = append(ev.Sinks, db)
	}

	filterMethods := cfg.Methods
	if *methods != "" {
		filterMethods = splitList(*methods)
	}
	filterRuns := cfg.Runs
	if *runs != "" {
		filterRuns = splitList(*runs)
	}

	results, err := ev.Evaluate(filterMethods, filterRuns)
	if err != nil {
		logger.Fatalf("evaluate: %v", err)
	}

	for _, method := range filterMethods {
		for _, run := range filterRuns {
			for domain, res := range results[method][run] {
				for _, e := range res.Errors {
					fmt.Fprintf(os.Stderr, "%s - %s - %s: %s\n", method, domain, run, e)
				}
			}
		}
	}

	eval.PrintReport(os.Stdout, eval.SuccessRates(results))
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
