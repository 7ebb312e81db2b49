// Command coverage runs the base generator against an instance document
// and prints a human-readable coverage report: what got scheduled, what
// fell short, and the suggestions the diagnostics block produced — the
// debug-tool counterpart to cmd/generate's machine-readable export.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/generator"
	"timetable-UDP/internal/loader"
	"timetable-UDP/internal/logging"
	"timetable-UDP/internal/schederr"
)

func main() {
	inputPath := flag.String("input", "data/instance.json", "path to the instance JSON document")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "coverage: %v\n", err)
		os.Exit(1)
	}
	log := logging.Nop()

	instance, err := loader.LoadInstance(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coverage: %v\n", err)
		os.Exit(1)
	}

	result, genErr := generator.Generate(context.Background(), instance, nil, cfg, log)

	var diag *schederr.Diagnostics
	var schedErr *schederr.Error
	if genErr != nil {
		if errors.As(genErr, &schedErr) {
			diag = schedErr.Diagnostics
			fmt.Printf("generation failed: %s\n\n", schedErr.Error())
		} else {
			fmt.Fprintf(os.Stderr, "coverage: %v\n", genErr)
			os.Exit(1)
		}
	} else {
		diag = result.Diagnostics
		fmt.Printf("generation succeeded: %d slot(s) scheduled in %dms\n\n", len(result.Schedule), result.BaseTimeMs)
	}

	if diag == nil {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "metric\tvalue")
	fmt.Fprintf(w, "lab rooms\t%d\n", diag.LabRooms)
	fmt.Fprintf(w, "theory rooms\t%d\n", diag.TheoryRooms)
	fmt.Fprintf(w, "lab blocks needed/available\t%d/%d\n", diag.LabBlocksNeeded, diag.LabBlocksAvailable)
	fmt.Fprintf(w, "lab utilization\t%.1f%%\n", diag.LabUtilization)
	fmt.Fprintf(w, "theory periods needed/available\t%d/%d\n", diag.TheoryPeriodsNeeded, diag.TheoryPeriodsAvailable)
	fmt.Fprintf(w, "theory utilization\t%.1f%%\n", diag.TheoryUtilization)
	fmt.Fprintf(w, "best strategy\t%s\n", diag.BestStrategy)
	fmt.Fprintf(w, "reduced courses\t%d\n", len(diag.ReducedCourses))
	w.Flush()

	if len(diag.Suggestions) > 0 {
		fmt.Println("\nsuggestions:")
		for _, s := range diag.Suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
}
