// Command seed applies a catalog and slot-window plan to the database.  It
// is safe to run repeatedly: catalog rows are upserted and existing slots
// are left untouched.
//
//	go run ./cmd/seed -plan configs/seed.yaml
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/iliyamo/immersive-venue-booking/internal/config"
	"github.com/iliyamo/immersive-venue-booking/internal/database"
	"github.com/iliyamo/immersive-venue-booking/internal/logger"
	"github.com/iliyamo/immersive-venue-booking/internal/repository"
	"github.com/iliyamo/immersive-venue-booking/internal/seed"
)

func main() {
	planPath := flag.String("plan", "configs/seed.yaml", "path to the YAML seed plan")
	migrate := flag.Bool("migrate", false, "apply the schema before seeding")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "seed"})

	plan, err := seed.Load(*planPath)
	if err != nil {
		log.Fatal("load plan", "path", *planPath, "error", err)
	}
	// The admin password can be kept out of the plan file.
	if plan.Admin != nil {
		if pw := os.Getenv("SEED_ADMIN_PASSWORD"); pw != "" {
			plan.Admin.Password = pw
		}
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connect failed", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if *migrate || cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("schema migration failed", "error", err)
		}
	}

	s := &seed.Seeder{
		Experiences: repository.NewExperienceRepo(db),
		Venues:      repository.NewVenueRepo(db),
		Products:    repository.NewProductRepo(db),
		Tiers:       repository.NewMembershipRepo(db),
		Slots:       repository.NewSlotRepo(db),
		Users:       repository.NewUserRepo(db),
		BcryptCost:  cfg.BcryptCost,
		Log:         log,
	}
	start := time.Now()
	rep, err := s.Run(ctx, plan)
	if err != nil {
		log.Fatal("seed failed", "error", err, "progress", rep)
	}
	log.Info("seed complete",
		"experiences", rep.Experiences,
		"venues", rep.Venues,
		"links", rep.Links,
		"products", rep.Products,
		"tiers", rep.Tiers,
		"slots_created", rep.SlotsCreated,
		"slots_existing", rep.SlotsExisted,
		"admin_created", rep.AdminCreated,
		"took", time.Since(start).String(),
	)
}
