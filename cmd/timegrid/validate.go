package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"timegrid/internal/config"
	"timegrid/internal/engine"
	"timegrid/internal/grid"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the CSV sources produce a well-formed model",
	Long:  "Validate loads the catalog and builds the variable model without solving, surfacing missing rooms, empty calendars and sections with no feasible placement.",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().String("courses", "", "courses CSV file (required)")
	validateCmd.Flags().String("rooms", "", "rooms CSV file (required)")
	validateCmd.Flags().String("calendar", "", "working-day calendar CSV file")
	validateCmd.Flags().String("preferences", "", "teacher day preference CSV file")
	validateCmd.MarkFlagRequired("courses")
	validateCmd.MarkFlagRequired("rooms")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("catalog: %v sections, %v rooms, %v teachers\n",
		len(cat.Sections()), len(cat.Rooms()), len(cat.Teachers()))
	fmt.Printf("grid: %v slots across %v days\n", len(g.AllSlots()), len(g.Days()))
	fmt.Printf("model: %v variables over %v demands\n", len(m.Variables()), len(m.Demands()))
	return nil
}
