// Package web serves the staff UI: login, the day sheet, and the booking
// form in front of the admission engine.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/tablebook/internal/auth"
	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/postgres"
	"github.com/example/tablebook/internal/recurrence"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/*
var fs embed.FS

const dayFormat = "2006-01-02"

type Server struct {
	Auth     *auth.Store
	Engine   *booking.Engine
	Windows  *postgres.WindowRepo
	Bookings *postgres.BookingRepo
	Log      *zap.Logger
}

type bookingRow struct {
	booking.Booking
	WindowName string
	ClockTime  string
	CanCancel  bool
}

type windowRow struct {
	booking.ServiceWindow
	Day  string
	Band string
	Menu string

	Covers       string
	OnlineCovers string
	OnlineParty  string
}

type tmplData struct {
	Title string
	User  int64
	Flash string

	Date     string
	Bookings []bookingRow
	Windows  []windowRow
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/static/", http.FileServer(http.FS(fs)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.Handle("/", s.Auth.RequireStaff(http.HandlerFunc(s.handleDaySheet)))
	mux.Handle("/windows", s.Auth.RequireStaff(http.HandlerFunc(s.handleWindows)))
	mux.Handle("/bookings/new", s.Auth.RequireStaff(http.HandlerFunc(s.handleBookingNew)))
	mux.Handle("/bookings/create", s.Auth.RequireStaff(http.HandlerFunc(s.handleBookingCreate)))
	mux.Handle("/bookings/cancel", s.Auth.RequireStaff(http.HandlerFunc(s.handleBookingCancel)))

	return mux
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "templates/login.html", tmplData{Title: "Login"})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		id, err := s.Auth.Authenticate(r.Context(), username, r.FormValue("password"))
		if err != nil {
			s.render(w, "templates/login.html", tmplData{Title: "Login", Flash: "Invalid username/password"})
			return
		}
		if err := s.Auth.SetSession(w, r, id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleDaySheet(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	date := time.Now().UTC()
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := time.Parse(dayFormat, q)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		date = d
	}

	bs, err := s.Bookings.ListByDate(r.Context(), date)
	if err != nil {
		s.fail(w, "list bookings", err)
		return
	}
	names, err := s.windowNames(r.Context())
	if err != nil {
		s.fail(w, "list windows", err)
		return
	}

	rows := make([]bookingRow, 0, len(bs))
	for _, b := range bs {
		rows = append(rows, bookingRow{
			Booking:    b,
			WindowName: names[b.ServiceWindowID],
			ClockTime:  booking.Clock(b.TimeMin),
			CanCancel:  b.Status == booking.StatusPending || b.Status == booking.StatusConfirmed,
		})
	}

	s.render(w, "templates/day.html", tmplData{
		Title:    "Day sheet",
		User:     uid,
		Flash:    r.URL.Query().Get("flash"),
		Date:     booking.DateOnly(date).Format(dayFormat),
		Bookings: rows,
	})
}

func (s *Server) handleWindows(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	ws, err := s.Windows.List(r.Context())
	if err != nil {
		s.fail(w, "list windows", err)
		return
	}
	s.render(w, "templates/windows.html", tmplData{
		Title:   "Service windows",
		User:    uid,
		Windows: windowRows(ws),
	})
}

func (s *Server) handleBookingNew(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	ws, err := s.Windows.List(r.Context())
	if err != nil {
		s.fail(w, "list windows", err)
		return
	}
	s.render(w, "templates/new_booking.html", tmplData{
		Title:   "New booking",
		User:    uid,
		Date:    time.Now().UTC().Format(dayFormat),
		Windows: windowRows(ws),
	})
}

func (s *Server) handleBookingCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req, rule, err := parseBookingForm(r)
	if err != nil {
		s.redirectFlash(w, r, "/bookings/new", err.Error())
		return
	}

	if rule != nil {
		req.Recurrence = rule
		outcome, err := s.Engine.AdmitSeries(r.Context(), req)
		if err != nil {
			if rej, ok := booking.Rejection(err); ok {
				s.redirectFlash(w, r, "/bookings/new", rejectionMessage(rej))
				return
			}
			s.fail(w, "admit series", err)
			return
		}
		flash := fmt.Sprintf("Created %d bookings", len(outcome.Created))
		if n := len(outcome.Rejected); n > 0 {
			flash = fmt.Sprintf("%s; %d dates rejected (first: %s)",
				flash, n, rejectionMessage(outcome.Rejected[0].Err))
		}
		s.redirectFlash(w, r, "/?date="+req.Date.Format(dayFormat), flash)
		return
	}

	b, err := s.Engine.Admit(r.Context(), req)
	if err != nil {
		if rej, ok := booking.Rejection(err); ok {
			s.redirectFlash(w, r, "/bookings/new", rejectionMessage(rej))
			return
		}
		s.fail(w, "admit booking", err)
		return
	}
	s.redirectFlash(w, r, "/?date="+b.Date.Format(dayFormat),
		fmt.Sprintf("Booked %s, party of %d at %s", b.GuestName, b.PartySize, booking.Clock(b.TimeMin)))
}

func (s *Server) handleBookingCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.FormValue("id")
	b, err := s.Bookings.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, "booking not found", http.StatusNotFound)
		return
	}
	if err := s.Bookings.SetStatus(r.Context(), id, booking.StatusCancelled); err != nil {
		s.fail(w, "cancel booking", err)
		return
	}
	s.redirectFlash(w, r, "/?date="+b.Date.Format(dayFormat), "Booking cancelled")
}

func parseBookingForm(r *http.Request) (booking.Request, *recurrence.Rule, error) {
	date, err := time.Parse(dayFormat, r.FormValue("date"))
	if err != nil {
		return booking.Request{}, nil, fmt.Errorf("invalid date (want YYYY-MM-DD)")
	}
	partySize, err := strconv.Atoi(r.FormValue("party_size"))
	if err != nil || partySize < 1 {
		return booking.Request{}, nil, fmt.Errorf("invalid party size")
	}

	channel := booking.ChannelInternal
	if r.FormValue("channel") == string(booking.ChannelOnline) {
		channel = booking.ChannelOnline
	}

	req := booking.Request{
		Date:       date,
		PartySize:  partySize,
		Channel:    channel,
		WindowID:   strings.TrimSpace(r.FormValue("window_id")),
		GuestName:  strings.TrimSpace(r.FormValue("guest_name")),
		GuestPhone: strings.TrimSpace(r.FormValue("guest_phone")),
		Notes:      strings.TrimSpace(r.FormValue("notes")),
	}
	if t := strings.TrimSpace(r.FormValue("time")); t != "" {
		min, err := booking.ParseClock(t)
		if err != nil {
			return booking.Request{}, nil, err
		}
		req.TimeMin = &min
	}

	freq := recurrence.Frequency(r.FormValue("repeat"))
	if freq == "" || freq == recurrence.None {
		return req, nil, nil
	}

	rule := &recurrence.Rule{Frequency: freq}
	if v := r.FormValue("repeat_interval"); v != "" {
		rule.Interval, _ = strconv.Atoi(v)
	}
	if v := r.FormValue("repeat_until"); v != "" {
		until, err := time.Parse(dayFormat, v)
		if err != nil {
			return booking.Request{}, nil, fmt.Errorf("invalid repeat-until date")
		}
		rule.EndDate = until
	}
	for _, v := range r.Form["repeat_weekdays"] {
		wd, err := strconv.Atoi(v)
		if err == nil {
			rule.Weekdays = append(rule.Weekdays, time.Weekday(wd))
		}
	}
	if v := r.FormValue("repeat_monthly_day"); v != "" {
		rule.MonthlyDay, _ = strconv.Atoi(v)
	}
	if v := r.FormValue("repeat_monthly_week"); v != "" {
		rule.MonthlyWeek, _ = strconv.Atoi(v)
	}
	for _, v := range strings.Split(r.FormValue("repeat_skip"), ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		skip, err := time.Parse(dayFormat, v)
		if err != nil {
			return booking.Request{}, nil, fmt.Errorf("invalid skip date %q", v)
		}
		rule.SkipDates = append(rule.SkipDates, skip)
	}
	return req, rule, nil
}

// rejectionMessage translates deterministic admission rejections into the
// user-facing wording the UI shows.
func rejectionMessage(rej *booking.RejectionError) string {
	switch rej.Kind {
	case booking.RejectPartyTooLarge:
		return "Party size exceeds the online booking limit"
	case booking.RejectSlotFull, booking.RejectOnlineAllocationFull:
		return "No capacity available at that time"
	case booking.RejectNoMatchingWindow:
		return "No service is available at that day and time"
	case booking.RejectInvalidRecurrence:
		return "Invalid repeat settings: " + rej.Detail
	default:
		return "Booking could not be created"
	}
}

func (s *Server) windowNames(ctx context.Context) (map[string]string, error) {
	ws, err := s.Windows.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(ws))
	for _, w := range ws {
		names[w.ID] = w.Name
	}
	return names, nil
}

func windowRows(ws []booking.ServiceWindow) []windowRow {
	rows := make([]windowRow, 0, len(ws))
	for _, w := range ws {
		rows = append(rows, windowRow{
			ServiceWindow: w,
			Day:           w.DayOfWeek.String(),
			Band:          booking.Clock(w.StartMin) + "-" + booking.Clock(w.EndMin),
			Menu:          w.MenuName,
			Covers:        ceiling(w.MaxCoversPerSlot),
			OnlineCovers:  ceiling(w.MaxOnlineCovers),
			OnlineParty:   ceiling(w.MaxOnlinePartySize),
		})
	}
	return rows
}

func ceiling(n *int) string {
	if n == nil {
		return "unlimited"
	}
	return strconv.Itoa(*n)
}

func (s *Server) redirectFlash(w http.ResponseWriter, r *http.Request, to, flash string) {
	sep := "?"
	if strings.Contains(to, "?") {
		sep = "&"
	}
	http.Redirect(w, r, to+sep+"flash="+template.URLQueryEscaper(flash), http.StatusFound)
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.Log.Error(what, zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) render(w http.ResponseWriter, name string, data tmplData) {
	t, err := template.ParseFS(fs, "templates/base.html", name)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		s.Log.Error("render", zap.String("template", name), zap.Error(err))
	}
}

func Start(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
