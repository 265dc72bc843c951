// Command zonegen runs hotspot zone generation and/or a full stats refresh,
// for use from cron.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"crimewatch/config"
	"crimewatch/internal/app"
	"crimewatch/internal/logger"
)

func main() {
	var (
		generate = flag.Bool("generate", true, "create AUTO zones from recent crime hotspots")
		refresh  = flag.Bool("refresh", true, "refresh stats of every active zone")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.Log)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}

	code := 0
	if *generate {
		res, err := a.Generator.AutoGenerateZones(ctx)
		if err != nil {
			log.Error("auto-generate failed", "err", err)
			code = 1
		} else {
			log.Info("auto-generate done", "created", res.Created, "skipped", res.Skipped,
				"failed", res.Failed, "clusters", res.Clusters, "posts", res.TotalPosts)
		}
	}
	if *refresh {
		sum, err := a.Zones.RefreshAllZoneStats(ctx)
		if err != nil {
			log.Error("stats refresh failed", "err", err)
			code = 1
		} else if sum.Failed > 0 {
			code = 1
		}
	}
	a.Close()
	os.Exit(code)
}
