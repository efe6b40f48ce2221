package main

import (
	"flag"
	"fmt"
	"os"

	"blockstack.ai/internal/persistence/runlog"
)

func main() {
	var (
		logPath = flag.String("log", "", "path to a runs-*.jsonl.zst file")
		logDir  = flag.String("logdir", "", "directory of run logs (replays all, oldest first)")
		verbose = flag.Bool("steps", false, "print every step, not just results")
	)
	flag.Parse()

	var files []string
	switch {
	case *logPath != "":
		files = []string{*logPath}
	case *logDir != "":
		fs, err := runlog.ListFiles(*logDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list logs:", err)
			os.Exit(1)
		}
		files = fs
	default:
		fmt.Fprintln(os.Stderr, "missing -log or -logdir")
		os.Exit(2)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no run logs found")
		os.Exit(1)
	}

	var plans, failed, steps int
	for _, path := range files {
		err := runlog.ForEach(path, func(e runlog.Entry) error {
			if e.Step != nil {
				steps++
				if *verbose {
					state := "ok"
					if e.Step.Skipped {
						state = "skipped"
					} else if e.Step.Error != "" {
						state = e.Step.Code
					}
					fmt.Printf("%s/%s/%s #%d %-40q %s\n",
						e.Step.Method, e.Step.Run, e.Step.Domain, e.Step.Index, e.Step.Instruction, state)
				}
			}
			if e.Result != nil {
				plans++
				if !e.Result.OK() {
					failed++
				}
				fmt.Printf("%s/%s/%s steps=%d skipped=%d errors=%d\n",
					e.Result.Method, e.Result.Run, e.Result.Domain,
					e.Result.Steps, e.Result.Skipped, len(e.Result.Errors))
				for _, msg := range e.Result.Errors {
					fmt.Printf("  %s\n", msg)
				}
			}
			return nil
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
	}
	fmt.Printf("replay ok: files=%d plans=%d failed=%d steps=%d\n", len(files), plans, failed, steps)
}
