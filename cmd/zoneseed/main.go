// Command zoneseed loads zones and sample crime reports from a YAML file.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"crimewatch/config"
	"crimewatch/internal/app"
	"crimewatch/internal/logger"
	"crimewatch/internal/seed"
)

func main() {
	var (
		path    = flag.String("file", "", "path to the seed YAML (required)")
		dryRun  = flag.Bool("dry-run", false, "parse and validate only; no DB writes")
		migrate = flag.Bool("migrate", true, "run schema migration first")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.Log)
	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}
	data, err := os.ReadFile(*path)
	if err != nil {
		log.Error("read seed file", "err", err)
		os.Exit(1)
	}
	f, err := seed.Parse(data)
	if err != nil {
		log.Error("invalid seed file", "err", err)
		os.Exit(1)
	}
	log.Info("seed file ok", "zones", len(f.Zones), "reports", len(f.Reports))
	if *dryRun {
		return
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer a.Close()
	if *migrate {
		if err := a.Migrate(); err != nil {
			log.Error("migrate failed", "err", err)
			os.Exit(1)
		}
	}
	res, err := seed.Apply(ctx, f, a.Zones, a.Repos.CrimeReports, time.Now())
	if err != nil {
		log.Error("seed failed", "err", err, "zones", res.Zones, "reports", res.Reports)
		os.Exit(1)
	}
	log.Info("seed done", "zones", res.Zones, "reports", res.Reports,
		"refreshed", res.Stats.Refreshed, "refresh_failed", res.Stats.Failed)
}
