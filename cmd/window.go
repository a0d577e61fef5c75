package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/config"
	"github.com/example/tablebook/internal/db"
	"github.com/example/tablebook/internal/migrate"
	"github.com/example/tablebook/internal/postgres"
	"github.com/spf13/cobra"
)

func newWindowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Manage service windows and per-date capacity overrides",
	}
	cmd.AddCommand(newWindowCreateCmd())
	cmd.AddCommand(newWindowListCmd())
	cmd.AddCommand(newWindowOverrideCmd())
	return cmd
}

func openRepos(ctx context.Context) (*db.DB, *postgres.WindowRepo, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, nil, err
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, postgres.NewWindowRepo(d), nil
}

func newWindowCreateCmd() *cobra.Command {
	var (
		name           string
		day            int
		start, end     string
		slotMinutes    int
		maxCovers      int
		maxOnline      int
		maxOnlineParty int
		menuName       string
		menuFrom       string
		menuUntil      string
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a service window for one day of week",
		RunE: func(cmd *cobra.Command, args []string) error {
			startMin, err := booking.ParseClock(start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			endMin, err := booking.ParseClock(end)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}

			w := booking.ServiceWindow{
				Name:               name,
				DayOfWeek:          time.Weekday(day),
				StartMin:           startMin,
				EndMin:             endMin,
				SlotMinutes:        slotMinutes,
				MaxCoversPerSlot:   optionalInt(maxCovers),
				MaxOnlineCovers:    optionalInt(maxOnline),
				MaxOnlinePartySize: optionalInt(maxOnlineParty),
				Active:             true,
				MenuName:           menuName,
			}
			if menuFrom != "" {
				d, err := time.Parse("2006-01-02", menuFrom)
				if err != nil {
					return fmt.Errorf("invalid --menu-from (want YYYY-MM-DD)")
				}
				w.MenuFrom = &d
			}
			if menuUntil != "" {
				d, err := time.Parse("2006-01-02", menuUntil)
				if err != nil {
					return fmt.Errorf("invalid --menu-until (want YYYY-MM-DD)")
				}
				w.MenuUntil = &d
			}
			if err := w.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			d, repo, err := openRepos(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			created, err := repo.Create(ctx, w)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created window id=%s %s %s %s-%s\n",
				created.ID, created.Name, created.DayOfWeek, booking.Clock(startMin), booking.Clock(endMin))
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "window name, e.g. Dinner")
	c.Flags().IntVar(&day, "day", 0, "day of week (0=Sunday .. 6=Saturday)")
	c.Flags().StringVar(&start, "start", "", "start time HH:MM")
	c.Flags().StringVar(&end, "end", "", "end time HH:MM")
	c.Flags().IntVar(&slotMinutes, "slot-minutes", 30, "admission bucket width in minutes")
	c.Flags().IntVar(&maxCovers, "max-covers", 0, "covers ceiling per slot (0 = unlimited)")
	c.Flags().IntVar(&maxOnline, "max-online-covers", 0, "online covers ceiling per slot (0 = unlimited)")
	c.Flags().IntVar(&maxOnlineParty, "max-online-party", 0, "online single-booking party ceiling (0 = unlimited)")
	c.Flags().StringVar(&menuName, "menu-name", "", "optional special menu name")
	c.Flags().StringVar(&menuFrom, "menu-from", "", "special menu active from YYYY-MM-DD")
	c.Flags().StringVar(&menuUntil, "menu-until", "", "special menu active until YYYY-MM-DD")

	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("start")
	_ = c.MarkFlagRequired("end")
	return c
}

func newWindowListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List service windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			d, repo, err := openRepos(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			ws, err := repo.List(ctx)
			if err != nil {
				return err
			}
			for _, w := range ws {
				fmt.Fprintf(os.Stdout, "id=%s name=%q day=%s hours=%s-%s slot=%dm covers=%s online=%s party=%s active=%t\n",
					w.ID, w.Name, w.DayOfWeek, booking.Clock(w.StartMin), booking.Clock(w.EndMin), w.SlotMinutes,
					fmtCeiling(w.MaxCoversPerSlot), fmtCeiling(w.MaxOnlineCovers), fmtCeiling(w.MaxOnlinePartySize), w.Active)
			}
			return nil
		},
	}
}

func newWindowOverrideCmd() *cobra.Command {
	var (
		windowID    string
		date        string
		maxCovers   int
		slotMinutes int
	)

	c := &cobra.Command{
		Use:   "override",
		Short: "Set a per-date capacity override for a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("invalid --date (want YYYY-MM-DD)")
			}

			ctx := context.Background()
			d, repo, err := openRepos(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			o := booking.CapacityOverride{
				ServiceWindowID:  windowID,
				Date:             day,
				MaxCoversPerSlot: optionalInt(maxCovers),
				SlotMinutes:      optionalInt(slotMinutes),
			}
			if err := repo.SetOverride(ctx, o); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "override set for window=%s date=%s\n", windowID, date)
			return nil
		},
	}

	c.Flags().StringVar(&windowID, "window-id", "", "service window id")
	c.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD")
	c.Flags().IntVar(&maxCovers, "max-covers", 0, "replacement covers ceiling (0 = keep window value)")
	c.Flags().IntVar(&slotMinutes, "slot-minutes", 0, "replacement bucket width (0 = keep window value)")

	_ = c.MarkFlagRequired("window-id")
	_ = c.MarkFlagRequired("date")
	return c
}

func optionalInt(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

func fmtCeiling(n *int) string {
	if n == nil {
		return "unlimited"
	}
	return fmt.Sprintf("%d", *n)
}
