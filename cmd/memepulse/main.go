package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron/v3"

	"memepulse/internal/aggregate"
	"memepulse/internal/cmdlog"
	"memepulse/internal/config"
	"memepulse/internal/logging"
	"memepulse/internal/metrics"
	"memepulse/internal/normalize"
	"memepulse/internal/pipeline"
	"memepulse/internal/score"
	"memepulse/internal/store"
	"memepulse/internal/theme"
	"memepulse/internal/token"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	log := logging.New(nil)
	switch cmd {
	case "init":
		cmdInit(log)
	case "ingest":
		cmdIngest(log)
	case "score":
		cmdScore(log)
	case "aggregate":
		cmdAggregate(log)
	case "run":
		cmdRun(log)
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: memepulse <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./memepulse.yaml")
	fmt.Println("  ingest      Normalize and store raw tweet sources")
	fmt.Println("  score       Score unscored tweets via the sentiment service")
	fmt.Println("  aggregate   Recompute token sentiment timeseries")
	fmt.Println("  run         Ingest, score and aggregate on a cron schedule")
}

type app struct {
	cfg  config.Config
	db   *store.DB
	pipe *pipeline.Pipeline
	agg  *aggregate.Aggregator
}

func buildApp(cfg config.Config, log *logging.Logger) (*app, error) {
	db, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	ex := token.NewExtractor(cfg.Sources.ExtraTokens...)
	norm := normalize.New(ex, nil)
	agg := aggregate.New(db, log)
	pipe := pipeline.New(db, norm, agg, cfg.Sources.Workers, log)
	return &app{cfg: cfg, db: db, pipe: pipe, agg: agg}, nil
}

func (a *app) scoreDriver(log *logging.Logger) *score.Driver {
	if a.cfg.Scorer.URL == "" {
		return nil
	}
	scorer := score.NewHTTPScorer(a.cfg.Scorer.URL)
	return score.NewDriver(a.db, scorer, a.cfg.Scorer.BatchSize, a.cfg.Scorer.RPS, a.cfg.Scorer.Burst, log)
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func cmdInit(log *logging.Logger) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./memepulse.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdIngest(log *logging.Logger) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	cfgPath := fs.String("config", "./memepulse.yaml", "config path")
	dir := fs.String("dir", "", "data directory (overrides config)")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run(log, "ingest", func() error {
		cfg, err := loadConfig(*cfgPath)
		if err != nil {
			return err
		}
		if *dir != "" {
			cfg.Sources.DataDir = *dir
		}
		a, err := buildApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.db.Close()
		stats, err := a.pipe.IngestDir(context.Background(), cfg.Sources.DataDir)
		if err != nil {
			return err
		}
		fmt.Printf("files=%d skipped=%d records=%d bad=%d inserted=%d\n",
			stats.Files, stats.FilesSkipped, stats.Records, stats.RecordsSkipped, stats.TweetsInserted)
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdScore(log *logging.Logger) {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	cfgPath := fs.String("config", "./memepulse.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run(log, "score", func() error {
		cfg, err := loadConfig(*cfgPath)
		if err != nil {
			return err
		}
		a, err := buildApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.db.Close()
		driver := a.scoreDriver(log)
		if driver == nil {
			return fmt.Errorf("no scorer configured (set scorer.url or SCORER_URL)")
		}
		n, err := driver.ProcessUnscored(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("scored=%d\n", n)
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdAggregate(log *logging.Logger) {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)
	cfgPath := fs.String("config", "./memepulse.yaml", "config path")
	tok := fs.String("token", "", "single token to aggregate (default: all mentioned)")
	interval := fs.String("interval", "", "single interval (default: config intervals)")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run(log, "aggregate", func() error {
		cfg, err := loadConfig(*cfgPath)
		if err != nil {
			return err
		}
		a, err := buildApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.db.Close()
		ctx := context.Background()
		intervals := cfg.Aggregation.Intervals
		if *interval != "" {
			intervals = []string{*interval}
		}
		if *tok != "" {
			for _, iv := range intervals {
				if err := a.agg.Aggregate(ctx, *tok, iv); err != nil {
					return err
				}
			}
			return nil
		}
		return a.agg.AggregateAll(ctx, intervals)
	})
	if err != nil {
		os.Exit(1)
	}
}

func cmdRun(log *logging.Logger) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./memepulse.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	a, err := buildApp(cfg, log)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer a.db.Close()
	metrics.StartServer(cfg.Metrics.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func() {
		_ = cmdlog.Run(log, "run", func() error {
			_, err := a.pipe.RunOnce(ctx, cfg.Sources.DataDir, a.scoreDriver(log), cfg.Aggregation.Intervals)
			return err
		})
	}

	theme.PrintBanner()
	runOnce()
	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule.Cron, runOnce); err != nil {
		fmt.Println("error: bad cron expression:", err)
		os.Exit(1)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}
