// Command xsrecover recovers generator states from files of anchored
// observations and prints the results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/xsrecover/xsrecover"
	"github.com/xsrecover/xsrecover/observe"
	"github.com/xsrecover/xsrecover/recovery"
	"github.com/xsrecover/xsrecover/report"
	"github.com/xsrecover/xsrecover/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, inputs, stop, err := configure()
	if err != nil {
		return err
	}
	if stop {
		return nil
	}

	if cfg.LogFile != "" {
		if err := initLogRotator(cfg.LogFile, cfg.MaxLogRolls); err != nil {
			return err
		}
		defer logRotator.Close()
	}
	if err := setLogLevels(cfg.DebugLevel); err != nil {
		return err
	}

	color.NoColor = color.NoColor || cfg.NoColor

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var records []recovery.Record
	for _, path := range inputs {
		recs, err := observe.Load(path)
		if err != nil {
			return err
		}
		log.Debugf("Loaded %d records from %s", len(recs), path)
		records = append(records, recs...)
	}

	params := cfg.params()
	rcfg := recovery.Config{
		Params:  params,
		Timeout: cfg.Timeout,
		Workers: cfg.Workers,
	}

	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("error opening database: %w", err)
		}
		defer db.Close()
		rcfg.Cache = db
	}

	rcv, err := recovery.New(rcfg)
	if err != nil {
		return err
	}

	log.Infof("Recovering %d records", len(records))
	outcomes, err := rcv.RecoverAll(ctx, records)
	if err != nil {
		return err
	}

	labels := report.Labels(observe.Labels(records))

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			report.Failure(os.Stdout, o.Name, o.Err)
			failed++
			continue
		}

		report.Result(os.Stdout, o.Name, o.Result)

		if c, ok := o.Result.Unique(); ok && cfg.To > cfg.From {
			report.Walk(os.Stdout, xsrecover.NewCursor(params, c), cfg.From, cfg.To, labels)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d records could not be recovered", failed, len(outcomes))
	}

	return nil
}
