package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayplanner/backend/internal/models"
	"github.com/dayplanner/backend/internal/optimizer"
)

type target struct {
	district string
	tier     string
}

func (t *target) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.district, "district", "d", "", "district to plan in")
	cmd.Flags().StringVarP(&t.tier, "tier", "t", "medium", "activity level: easy, medium, hard")
	_ = cmd.MarkFlagRequired("district")
}

func (c *cli) buildCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Place tasks from a YAML file on a one-day timeline",
		Example: `  planctl build -f tasks.yaml
  planctl build -f tasks.yaml -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in taskFile
			if err := readYAML(file, &in); err != nil {
				return err
			}
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			z := a.Service.Zone
			tasks, err := in.tasks(z)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				return errors.New("no tasks in input")
			}
			now := z.Normalize(time.Now())
			dayStart, dayEnd := z.At(now, optimizer.DayStartHour, 0), z.At(now, optimizer.DayEndHour, 0)
			if t, err := optionalTime(z, in.DayStart); err != nil {
				return err
			} else if t != nil {
				dayStart = *t
			}
			if t, err := optionalTime(z, in.DayEnd); err != nil {
				return err
			} else if t != nil {
				dayEnd = *t
			}

			res, err := a.Service.BuildSchedule(cmd.Context(), "", tasks, dayStart, dayEnd)
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "task file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (c *cli) optimizeCmd() *cobra.Command {
	var (
		t    target
		date string
	)
	cmd := &cobra.Command{
		Use:     "optimize",
		Short:   "Plan one day of visits in a district",
		Example: `  planctl optimize -d Gunpo-si --tier hard --date 2025-09-02`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.Service.ResolveProfile(cmd.Context(), "", t.district, models.ActivityTier(t.tier))
			if err != nil {
				return err
			}
			day := a.Service.Optimizer.Now()
			if date != "" {
				if day, err = a.Service.Zone.Parse(date); err != nil {
					return err
				}
			}
			res, err := a.Service.OptimizePlan(cmd.Context(), p, day, nil)
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
	t.register(cmd)
	cmd.Flags().StringVar(&date, "date", "", "day to plan (default today)")
	return cmd
}

func (c *cli) suggestCmd() *cobra.Command {
	var (
		t    target
		file string
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest visits for free time slots",
		Long: `suggest fills the empty_slots of the input file, one visit per day.
Without empty_slots, free 2-hour slots are derived from busy_events.`,
		Example: `  planctl suggest -d Seodaemun-gu -f week.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in slotFile
			if file != "" {
				if err := readYAML(file, &in); err != nil {
					return err
				}
			}
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			z := a.Service.Zone
			empty, err := slots(z, in.EmptySlots)
			if err != nil {
				return err
			}
			busy, err := slots(z, in.BusyEvents)
			if err != nil {
				return err
			}
			var weekStart time.Time
			if ws, err := optionalTime(z, in.WeekStart); err != nil {
				return err
			} else if ws != nil {
				weekStart = *ws
			}
			p, err := a.Service.ResolveProfile(cmd.Context(), "", t.district, models.ActivityTier(t.tier))
			if err != nil {
				return err
			}
			res, err := a.Service.Suggest(cmd.Context(), p, empty, busy, weekStart)
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
	t.register(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "slot file with empty_slots or busy_events")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	var district string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the catalog of a district",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			stats, err := a.Service.LocationStats(cmd.Context(), district)
			if err != nil {
				return err
			}
			return c.print(stats)
		},
	}
	cmd.Flags().StringVarP(&district, "district", "d", "", "district")
	_ = cmd.MarkFlagRequired("district")
	return cmd
}
