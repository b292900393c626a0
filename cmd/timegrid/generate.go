package main

import (
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timegrid/internal/catalog"
	"timegrid/internal/config"
	"timegrid/internal/engine"
	"timegrid/internal/export"
	"timegrid/internal/grid"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a timetable from CSV sources",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().String("courses", "", "courses CSV file (required)")
	generateCmd.Flags().String("rooms", "", "rooms CSV file (required)")
	generateCmd.Flags().String("calendar", "", "working-day calendar CSV file")
	generateCmd.Flags().String("preferences", "", "teacher day preference CSV file")
	generateCmd.Flags().StringP("out", "o", "", "write the timetable as an xlsx workbook")
	generateCmd.Flags().Int("workers", 1, "parallel search workers")
	generateCmd.Flags().Duration("time-limit", 0, "search time limit (0 means unlimited)")
	generateCmd.MarkFlagRequired("courses")
	generateCmd.MarkFlagRequired("rooms")

	viper.BindPFlag("workers", generateCmd.Flags().Lookup("workers"))
	viper.BindPFlag("time_limit", generateCmd.Flags().Lookup("time-limit"))

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := newLogger()
	defer logger.Sync()

	cat, err := loadCatalog(cmd, cfg)
	if err != nil {
		return err
	}

	g := grid.Build(cat, cfg.LabSlotsPerDay, cfg.TheorySlotsPerDay, cfg.WorkingDays())
	m, err := engine.BuildModel(cat, g, logger)
	if err != nil {
		return err
	}

	library := engine.NewLibrary(logger)
	registerUnits(library, cfg)

	solver := engine.NewSolver(library, logger)
	result, err := solver.Solve(cmd.Context(), m, engine.Options{
		TimeLimit: cfg.TimeLimit,
		Workers:   cfg.Workers,
		Scorer:    solveScorer(cat),
	})
	if err != nil {
		return err
	}

	fmt.Printf("run %v: %v (%v nodes, %v backtracks, %v)\n",
		result.RunID, result.Status, result.Stats.Nodes, result.Stats.Backtracks, result.Stats.Duration)

	if result.Status != engine.Solved {
		// A timed-out run still carries the best feasible assignment found.
		if result.Status == engine.TimedOut && len(result.Assignment) > 0 {
			fmt.Println("time limit reached; best timetable found so far (search incomplete):")
			printTimetable(entriesOf(result.Assignment), g)
		}
		return fmt.Errorf("no timetable produced: solver finished %v", result.Status)
	}

	timetable, err := engine.Extract(m, result)
	if err != nil {
		return err
	}

	printTimetable(timetable.Entries(), g)

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := export.NewExporter(logger).WriteFile(out, timetable, cat, g); err != nil {
			return err
		}
		fmt.Printf("workbook written to %v\n", out)
	}
	return nil
}

// A non-nil scorer switches the search from first-feasible to exhaustive
// best-score, so it is only engaged when preference data can differentiate
// solutions.
func solveScorer(cat *catalog.Catalog) engine.Scorer {
	if !cat.HasPreferences() {
		return nil
	}
	return engine.PreferenceScorer(cat)
}

func registerUnits(library *engine.Library, cfg config.Config) {
	library.Register(engine.LabRoomOnlyUnit{})
	library.Register(engine.LunchExclusionUnit{})
	library.Register(engine.FirstYearEndTimeUnit{CutoffIndex: cfg.FirstYearCutoff})
	if cfg.WorkloadCap > 0 {
		library.Register(engine.TeacherWorkloadCapUnit{MaxHours: cfg.WorkloadCap})
	}
}

func loadCatalog(cmd *cobra.Command, cfg config.Config) (*catalog.Catalog, error) {
	sources := catalog.Sources{}
	files := []struct {
		flag   string
		target *io.Reader
	}{
		{"courses", &sources.Courses},
		{"rooms", &sources.Rooms},
		{"calendar", &sources.Calendar},
		{"preferences", &sources.Preferences},
	}
	for _, file := range files {
		path, _ := cmd.Flags().GetString(file.flag)
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open %v file: %w", file.flag, err)
		}
		defer f.Close()
		*file.target = f
	}

	return catalog.Load(sources,
		catalog.WithClassifier(catalog.NewKeywordClassifier(cfg.LabKeywords)),
		catalog.WithLunchSlots(cfg.LunchTheorySlot, cfg.LunchLabSlots),
		catalog.WithLogger(newLogger()),
	)
}

func entriesOf(assignment []engine.Variable) []engine.Entry {
	return lo.Map(assignment, func(variable engine.Variable, _ int) engine.Entry {
		return engine.Entry{Section: variable.Section, Room: variable.Room, Slot: variable.Slot}
	})
}

func printTimetable(entries []engine.Entry, g *grid.Grid) {
	for _, day := range g.Days() {
		printed := false
		for _, slot := range g.AllSlots() {
			if slot.Day != day {
				continue
			}
			for _, entry := range entries {
				if entry.Slot.Key() != slot.Key() {
					continue
				}
				if !printed {
					fmt.Printf("%v:\n", day)
					printed = true
				}
				fmt.Printf("  %v %v [%v] %v %v (%v) in %v\n",
					slot.Kind, slot.Index+1, slot.Time,
					entry.Section.CourseID, entry.Section.Section, entry.Section.Teacher,
					entry.Room.Name)
			}
		}
	}
}
