// Command utilization reports lab and theory room-capacity pressure for an
// instance document without running the full generator — a quick sanity
// check before committing to a generation run, in the spirit of the
// teacher's cmd/debug one-off analysis scripts.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/domain"
	"timetable-UDP/internal/generator"
	"timetable-UDP/internal/loader"
)

func main() {
	inputPath := flag.String("input", "data/instance.json", "path to the instance JSON document")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "utilization: %v\n", err)
		os.Exit(1)
	}
	block := int(cfg.Generator.LabBlock)

	instance, err := loader.LoadInstance(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "utilization: %v\n", err)
		os.Exit(1)
	}

	var labCourses, theoryCourses []domain.CourseInstance
	var labRooms, theoryRooms []domain.Room
	for _, c := range instance.Courses {
		if c.IsLab() {
			labCourses = append(labCourses, c)
		} else {
			theoryCourses = append(theoryCourses, c)
		}
	}
	for _, r := range instance.Rooms {
		if r.Type == domain.RoomLab {
			labRooms = append(labRooms, r)
		} else {
			theoryRooms = append(theoryRooms, r)
		}
	}

	labBlocksNeeded := 0
	for _, c := range labCourses {
		labBlocksNeeded += c.PeriodsPerWeek / block
		if c.PeriodsPerWeek%block != 0 {
			labBlocksNeeded++
		}
	}
	labGridCapacity := len(labRooms) * domain.DaysPerWeek * domain.PeriodsPerDay / block

	theoryUtilization := generator.Utilization(theoryCourses, len(theoryRooms))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "resource\tneeded\tcapacity\tutilization")
	fmt.Fprintf(w, "lab rooms (blocks)\t%d\t%d\t%.1f%%\n", labBlocksNeeded, labGridCapacity, ratio(labBlocksNeeded, labGridCapacity))
	fmt.Fprintf(w, "theory rooms (periods)\t-\t-\t%.1f%%\n", theoryUtilization*100)
	w.Flush()

	if labGridCapacity > 0 && labBlocksNeeded > labGridCapacity {
		fmt.Printf("warning: lab demand exceeds grid capacity by %d block(s)\n", labBlocksNeeded-labGridCapacity)
	}
	if theoryUtilization > 0.95 {
		fmt.Println("warning: theory utilization above the period-reduction cutoff (0.95)")
	}
}

func ratio(needed, capacity int) float64 {
	if capacity == 0 {
		return 0
	}
	return 100 * float64(needed) / float64(capacity)
}
