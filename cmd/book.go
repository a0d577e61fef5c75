package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/postgres"
	"github.com/example/tablebook/internal/recurrence"
	"github.com/spf13/cobra"
)

func newBookCmd() *cobra.Command {
	var (
		date      string
		at        string
		partySize int
		channel   string
		windowID  string
		guestName string
		phone     string
		notes     string

		repeat      string
		interval    int
		until       string
		weekdays    string
		monthlyDay  int
		monthlyWeek int
		skipDates   string
	)

	c := &cobra.Command{
		Use:   "book",
		Short: "Admit a booking (or a recurring series) from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("invalid --date (want YYYY-MM-DD)")
			}

			req := booking.Request{
				Date:       start,
				PartySize:  partySize,
				Channel:    booking.Channel(channel),
				WindowID:   windowID,
				GuestName:  guestName,
				GuestPhone: phone,
				Notes:      notes,
			}
			if req.Channel != booking.ChannelOnline && req.Channel != booking.ChannelInternal {
				return fmt.Errorf("invalid --channel (want online or internal)")
			}
			if at != "" {
				min, err := booking.ParseClock(at)
				if err != nil {
					return fmt.Errorf("invalid --time: %w", err)
				}
				req.TimeMin = &min
			}

			rule, err := parseRepeatFlags(repeat, interval, until, weekdays, monthlyDay, monthlyWeek, skipDates)
			if err != nil {
				return err
			}
			req.Recurrence = rule

			ctx := context.Background()
			d, windowRepo, err := openRepos(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			bookingRepo := postgres.NewBookingRepo(d)
			engine := booking.NewEngine(windowRepo, windowRepo, bookingRepo, bookingRepo)

			if rule == nil {
				b, err := engine.Admit(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "booked id=%s date=%s time=%s party=%d status=%s\n",
					b.ID, b.Date.Format("2006-01-02"), booking.Clock(b.TimeMin), b.PartySize, b.Status)
				return nil
			}

			outcome, err := engine.AdmitSeries(ctx, req)
			if err != nil {
				return err
			}
			for _, b := range outcome.Created {
				fmt.Fprintf(os.Stdout, "booked %s %s id=%s\n", b.Date.Format("2006-01-02"), booking.Clock(b.TimeMin), b.ID)
			}
			for _, rej := range outcome.Rejected {
				fmt.Fprintf(os.Stdout, "rejected %s: %s\n", rej.Date.Format("2006-01-02"), rej.Err)
			}
			fmt.Fprintf(os.Stdout, "series: %d booked, %d rejected\n", len(outcome.Created), len(outcome.Rejected))
			return nil
		},
	}

	c.Flags().StringVar(&date, "date", "", "booking date YYYY-MM-DD")
	c.Flags().StringVar(&at, "time", "", "requested time HH:MM (optional)")
	c.Flags().IntVar(&partySize, "party-size", 2, "party size")
	c.Flags().StringVar(&channel, "channel", "internal", "request channel: online or internal")
	c.Flags().StringVar(&windowID, "window-id", "", "pin a specific service window (optional)")
	c.Flags().StringVar(&guestName, "guest", "", "guest name")
	c.Flags().StringVar(&phone, "phone", "", "guest phone")
	c.Flags().StringVar(&notes, "notes", "", "notes")

	c.Flags().StringVar(&repeat, "repeat", "", "repeat frequency: daily, weekly, monthly_by_date, monthly_by_weekday")
	c.Flags().IntVar(&interval, "repeat-interval", 1, "repeat every N units")
	c.Flags().StringVar(&until, "repeat-until", "", "last repeat date YYYY-MM-DD (inclusive)")
	c.Flags().StringVar(&weekdays, "repeat-weekdays", "", "comma-separated weekdays 0-6 (weekly / monthly_by_weekday)")
	c.Flags().IntVar(&monthlyDay, "repeat-monthly-day", 0, "day of month (monthly_by_date)")
	c.Flags().IntVar(&monthlyWeek, "repeat-monthly-week", 0, "week of month 1-4, or -1 for last (monthly_by_weekday)")
	c.Flags().StringVar(&skipDates, "repeat-skip", "", "comma-separated dates to skip")

	_ = c.MarkFlagRequired("date")
	return c
}

func parseRepeatFlags(repeat string, interval int, until, weekdays string, monthlyDay, monthlyWeek int, skipDates string) (*recurrence.Rule, error) {
	if repeat == "" || repeat == string(recurrence.None) {
		return nil, nil
	}
	rule := &recurrence.Rule{
		Frequency:   recurrence.Frequency(repeat),
		Interval:    interval,
		MonthlyDay:  monthlyDay,
		MonthlyWeek: monthlyWeek,
	}
	if until != "" {
		d, err := time.Parse("2006-01-02", until)
		if err != nil {
			return nil, fmt.Errorf("invalid --repeat-until (want YYYY-MM-DD)")
		}
		rule.EndDate = d
	}
	for _, v := range splitCSV(weekdays) {
		var wd int
		if _, err := fmt.Sscanf(v, "%d", &wd); err != nil {
			return nil, fmt.Errorf("invalid --repeat-weekdays entry %q", v)
		}
		rule.Weekdays = append(rule.Weekdays, time.Weekday(wd))
	}
	for _, v := range splitCSV(skipDates) {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("invalid --repeat-skip entry %q", v)
		}
		rule.SkipDates = append(rule.SkipDates, d)
	}
	return rule, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
