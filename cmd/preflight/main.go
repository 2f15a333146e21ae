// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hamed0406/healthcheckify/internal/catalog"
	"github.com/hamed0406/healthcheckify/internal/config"
	"github.com/hamed0406/healthcheckify/internal/domain"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr))
}

// run checks configuration and the target catalog. It returns the process
// exit code.
func run(stdout, stderr io.Writer) int {
	fail := func(msg string) int {
		fmt.Fprintln(stderr, "✖", msg)
		return 1
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	cfg, err := config.FromEnv()
	if err != nil {
		return fail(err.Error())
	}
	ok("API_ADDR=" + cfg.Addr)
	ok(fmt.Sprintf("WORKERS=%d QUEUE_SIZE=%d", cfg.Workers, cfg.QueueSize))

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return fail(fmt.Sprintf("LOG_DIR %q is not writable: %v", cfg.LogDir, err))
	}
	ok("LOG_DIR=" + cfg.LogDir)

	targets, err := catalog.Load(cfg.TargetsFile)
	if err != nil {
		return fail(err.Error())
	}
	ok(fmt.Sprintf("TARGETS_FILE=%s (%d targets)", cfg.TargetsFile, len(targets)))

	seen := make(map[domain.TargetID]bool, len(targets))
	for _, t := range targets {
		if seen[t.ID] {
			warn(fmt.Sprintf("duplicate target id %q; only the first entry is reachable", t.ID))
		}
		seen[t.ID] = true
		switch t.ID {
		case "healthz", "metrics":
			warn(fmt.Sprintf("target id %q is shadowed by a built-in route", t.ID))
		}
	}

	if cfg.RecheckInterval == 0 {
		warn("RECHECK_INTERVAL is 0; targets are probed only when queried.")
	}
	if cfg.PublicRPM == 0 {
		warn("PUBLIC_RPM is 0; status routes are not rate limited.")
	}

	ok("preflight passed")
	return 0
}
