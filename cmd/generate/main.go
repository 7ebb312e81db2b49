// Command generate runs the full scheduling pipeline end to end: load an
// instance document, run the base generator (C4), hand the result to the
// GA optimizer (C5), and export the final schedule as JSON. The phase
// banners below follow the teacher's cmd/api/main.go step-by-step shape,
// re-expressed through structured zap fields instead of emoji
// fmt.Println.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/cpsat"
	"timetable-UDP/internal/exporter"
	"timetable-UDP/internal/ga"
	"timetable-UDP/internal/generator"
	"timetable-UDP/internal/loader"
	"timetable-UDP/internal/logging"
)

func main() {
	inputPath := flag.String("input", "data/instance.json", "path to the instance JSON document")
	outputPath := flag.String("output", "schedule.json", "path to write the generated schedule JSON")
	skipGA := flag.Bool("skip-ga", false, "emit the base generator's schedule without GA refinement")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("phase 1: loading instance", zap.String("path", *inputPath))
	instance, err := loader.LoadInstance(*inputPath)
	if err != nil {
		log.Fatal("failed to load instance", zap.Error(err))
	}
	log.Info("instance loaded",
		zap.Int("courses", len(instance.Courses)),
		zap.Int("rooms", len(instance.Rooms)),
		zap.Int("faculty_with_windows", len(instance.FacultyWindows)),
	)

	var client *cpsat.Client
	if cfg.CPSAT.BaseURL != "" {
		client = cpsat.New(cfg.CPSAT, log)
		log.Info("phase 2: cp-sat client configured", zap.String("base_url", cfg.CPSAT.BaseURL))
	} else {
		log.Info("phase 2: cp-sat disabled, running greedy-only")
	}

	log.Info("phase 3: running base generator")
	result, err := generator.Generate(ctx, instance, client, cfg, log)
	if err != nil {
		log.Fatal("base generation failed", zap.Error(err))
	}
	log.Info("base generation complete",
		zap.String("run_id", result.RunID),
		zap.Int("slots", len(result.Schedule)),
		zap.Int64("base_time_ms", result.BaseTimeMs),
		zap.String("best_strategy", result.Diagnostics.BestStrategy),
		zap.Int("reduced_courses", len(result.ReducedCourses)),
	)

	schedule := result.Schedule
	if *skipGA {
		log.Info("phase 4: skipped (--skip-ga)")
	} else {
		log.Info("phase 4: running ga optimizer", zap.Int("generations", cfg.GA.Generations), zap.Int("population", cfg.GA.Population))
		schedule = ga.Optimize(ctx, result.Schedule, cfg.GA, log)
	}

	log.Info("phase 5: exporting schedule", zap.String("path", *outputPath))
	if err := exporter.ExportToJSON(schedule, *outputPath); err != nil {
		log.Fatal("failed to export schedule", zap.Error(err))
	}

	log.Info("generation complete", zap.String("output", *outputPath))
}
