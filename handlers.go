package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"time-tracker-backend/internal/aggregate"
	"time-tracker-backend/internal/apperr"
	"time-tracker-backend/internal/category"
	"time-tracker-backend/internal/events"
	"time-tracker-backend/internal/metrics"
	"time-tracker-backend/internal/middleware"
	"time-tracker-backend/internal/model"
	"time-tracker-backend/internal/period"
	"time-tracker-backend/internal/validate"
)

const maxBodyBytes = 1 << 20

// Server holds the dependencies shared by the HTTP handlers.
type Server struct {
	store     Store
	resolver  *category.Resolver
	cache     *totalsCache
	publisher events.Publisher
	log       *slog.Logger
}

// NewServer wires the handlers. cache may be nil; a nil publisher publishes
// nothing.
func NewServer(store Store, cache *totalsCache, publisher events.Publisher, log *slog.Logger) *Server {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Server{
		store:     store,
		resolver:  category.NewResolver(store),
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

func (s *Server) registerRoutes(r gin.IRouter) {
	r.GET("/health", s.healthCheck)

	api := r.Group("/api")
	{
		api.GET("/categories", s.getCategories)
		api.POST("/categories", s.addCategory)
		api.GET("/time_entries", s.getTimeEntries)
		api.POST("/time_entries", s.addTimeEntry)
		api.POST("/time-entry", s.quickLogTimeEntry)
		api.GET("/totals/daily", s.getDailyTotals)
		api.GET("/totals/weekly", s.getWeeklyTotals)
		api.GET("/dashboard", s.getDashboard)
	}
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "time-tracker",
	})
}

// respondError writes the error body for err. Unclassified errors are logged
// with their detail and reported as a generic 500.
func (s *Server) respondError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInternal {
		s.log.ErrorContext(c.Request.Context(), "Request failed",
			"request_id", middleware.RequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err)
	}

	resp := errorResponse{Error: e.Message, Code: string(e.Kind)}
	if e.Kind == apperr.KindValidationFailed {
		fields := map[string][]string(e.Fields)
		if fields == nil {
			fields = map[string][]string{}
		}
		resp.Details = &errorDetails{FormErrors: []string{}, FieldErrors: fields}
	}
	c.JSON(e.Status(), resp)
}

// readObject reads the request body as a JSON object.
func readObject(c *gin.Context) (map[string]any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.MalformedPayload(err)
	}
	return validate.DecodeObject(body)
}

// setContentRange advertises the size of a full, unpaginated list.
func setContentRange(c *gin.Context, resource string, n int) {
	last := n - 1
	if last < 0 {
		last = 0
	}
	c.Header("Content-Range", fmt.Sprintf("%s 0-%d/%d", resource, last, n))
}

// getCategories lists every category ordered by id
func (s *Server) getCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	setContentRange(c, "categories", len(categories))
	c.JSON(http.StatusOK, categories)
}

// addCategory creates a new category
func (s *Server) addCategory(c *gin.Context) {
	raw, err := readObject(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	in, err := validate.Category(raw)
	if err != nil {
		s.respondError(c, err)
		return
	}

	created, err := s.store.CreateCategory(c.Request.Context(), in.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	metrics.RecordCategoryCreated()

	c.JSON(http.StatusCreated, dataResponse{Data: created})
}

// getTimeEntries lists entries, optionally for one day and one category
func (s *Server) getTimeEntries(c *gin.Context) {
	var filter EntryFilter

	if date := c.Query("date"); date != "" {
		day, err := period.Day(date)
		if err != nil {
			s.respondError(c, apperr.InvalidDateFormat(date))
			return
		}
		filter.Range = &day
	}

	if raw := c.Query("categoryId"); raw != "" {
		id, err := validate.ParseID(raw)
		if err != nil {
			fields := apperr.FieldErrors{}
			fields.Add("categoryId", err.Error())
			s.respondError(c, apperr.ValidationFailed(fields))
			return
		}
		filter.CategoryID = &id
	}

	entries, err := s.store.ListEntries(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}

	setContentRange(c, "time_entries", len(entries))
	c.JSON(http.StatusOK, entries)
}

// createEntry validates, resolves and stores an entry from the request body,
// then invalidates cached totals and publishes the creation event.
func (s *Server) createEntry(c *gin.Context) (model.TimeEntry, error) {
	ctx := c.Request.Context()

	raw, err := readObject(c)
	if err != nil {
		return model.TimeEntry{}, err
	}
	in, err := validate.TimeEntry(raw)
	if err != nil {
		return model.TimeEntry{}, err
	}
	cat, err := s.resolver.Resolve(ctx, in.Category)
	if err != nil {
		return model.TimeEntry{}, err
	}

	entry, err := s.store.CreateEntry(ctx, model.NewTimeEntry{
		Date:          in.Date,
		CategoryID:    cat.ID,
		DurationHours: in.DurationHours,
		Note:          in.Note,
	})
	if err != nil {
		return model.TimeEntry{}, err
	}
	if entry.CategoryName == "" {
		entry.CategoryName = cat.Name
	}

	s.cache.invalidate(ctx, entry.Date)
	metrics.RecordEntryCreated(entry.CategoryName, entry.DurationHours)

	// Best effort, the entry is already stored.
	if err := s.publisher.PublishEntryCreated(context.WithoutCancel(ctx), entry); err != nil {
		s.log.WarnContext(ctx, "Failed to publish time entry event",
			"request_id", middleware.RequestID(c),
			"id", entry.ID,
			"error", err)
	}

	return entry, nil
}

// addTimeEntry creates a new time entry
func (s *Server) addTimeEntry(c *gin.Context) {
	entry, err := s.createEntry(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dataResponse{Data: entry})
}

// quickLogTimeEntry creates a time entry and reports the updated total of
// its day.
func (s *Server) quickLogTimeEntry(c *gin.Context) {
	entry, err := s.createEntry(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	totals, err := s.dailyTotals(c.Request.Context(), period.DayOf(entry.Date))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, legacyEntryResponse{Data: entry, DailyTotalHours: totals.DailyTotalHours})
}

// dailyTotals summarizes the entries of day, reading through the cache.
func (s *Server) dailyTotals(ctx context.Context, day period.Range) (DailyTotals, error) {
	key := dailyCacheKey(day)

	var totals DailyTotals
	if s.cache.get(ctx, cachePeriodDaily, key, &totals) {
		return totals, nil
	}

	entries, err := s.store.ListEntries(ctx, EntryFilter{Range: &day, OldestFirst: true})
	if err != nil {
		return DailyTotals{}, err
	}
	sum := aggregate.Summarize(aggregate.FromTimeEntries(entries))
	totals = DailyTotals{DailyTotalHours: sum.TotalHours, ByCategory: sum.ByCategory}

	s.cache.set(ctx, key, totals)
	return totals, nil
}

// weeklyTotals summarizes the entries of week, reading through the cache.
func (s *Server) weeklyTotals(ctx context.Context, week period.Range) (WeeklyTotals, error) {
	key := weeklyCacheKey(week)

	var totals WeeklyTotals
	if s.cache.get(ctx, cachePeriodWeekly, key, &totals) {
		return totals, nil
	}

	entries, err := s.store.ListEntries(ctx, EntryFilter{Range: &week, OldestFirst: true})
	if err != nil {
		return WeeklyTotals{}, err
	}
	sum := aggregate.Summarize(aggregate.FromTimeEntries(entries))
	totals = WeeklyTotals{
		WeeklyTotalHours: sum.TotalHours,
		ByCategory:       sum.ByCategory,
		WeekStart:        period.FormatISO(week.Start),
		WeekEnd:          period.FormatISO(week.LastInstant()),
	}

	s.cache.set(ctx, key, totals)
	return totals, nil
}

// getDailyTotals handles GET /api/totals/daily?date=YYYY-MM-DD
func (s *Server) getDailyTotals(c *gin.Context) {
	date := c.Query("date")
	day, err := period.Day(date)
	if err != nil {
		s.respondError(c, apperr.InvalidDateFormat(date))
		return
	}

	totals, err := s.dailyTotals(c.Request.Context(), day)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// getWeeklyTotals handles GET /api/totals/weekly?date=YYYY-MM-DD for the
// Monday-based week containing date.
func (s *Server) getWeeklyTotals(c *gin.Context) {
	date := c.Query("date")
	week, err := period.Week(date)
	if err != nil {
		s.respondError(c, apperr.InvalidDateFormat(date))
		return
	}

	totals, err := s.weeklyTotals(c.Request.Context(), week)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// getDashboard returns the day and week summaries for a date along with the
// week's entries.
func (s *Server) getDashboard(c *gin.Context) {
	date := c.Query("date")
	day, err := period.Day(date)
	if err != nil {
		s.respondError(c, apperr.InvalidDateFormat(date))
		return
	}
	week := period.WeekOf(day.Start)

	var (
		daily   DailyTotals
		weekly  WeeklyTotals
		entries []model.TimeEntry
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		daily, err = s.dailyTotals(ctx, day)
		return err
	})
	g.Go(func() error {
		var err error
		weekly, err = s.weeklyTotals(ctx, week)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.store.ListEntries(ctx, EntryFilter{Range: &week})
		return err
	})
	if err := g.Wait(); err != nil {
		s.respondError(c, err)
		return
	}

	dailySorted := aggregate.Totals{TotalHours: daily.DailyTotalHours, ByCategory: daily.ByCategory}.SortedByHours()
	weeklySorted := aggregate.Totals{TotalHours: weekly.WeeklyTotalHours, ByCategory: weekly.ByCategory}.SortedByHours()

	c.JSON(http.StatusOK, Dashboard{
		Date:  period.FormatDate(day.Start),
		Daily: PeriodSummary{TotalHours: daily.DailyTotalHours, ByCategory: dailySorted},
		Weekly: WeekSummary{
			PeriodSummary: PeriodSummary{TotalHours: weekly.WeeklyTotalHours, ByCategory: weeklySorted},
			WeekStart:     weekly.WeekStart,
			WeekEnd:       weekly.WeekEnd,
		},
		Entries: entries,
	})
}
