// Package history serves the weekly activity overview: seven day aggregates,
// Monday to Sunday.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/fitsync/internal/activity"
	"github.com/2beens/fitsync/internal/activity/remote"
	"github.com/2beens/fitsync/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	megabyte       = 1024 * 1024
	defaultSizeMB  = 8
	daysInWeek     = 7
	defaultWeekTTL = 10 * time.Minute
)

type DayActivity struct {
	Day     string `json:"day"`
	Weekday string `json:"weekday"`
	activity.Totals
}

type Week struct {
	UserID string          `json:"userId"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Days   []DayActivity   `json:"days"`
	Total  activity.Totals `json:"total"`
}

type aggregateLister interface {
	List(ctx context.Context, userID, fromDay, toDay string) ([]remote.Aggregate, error)
}

type todaySource interface {
	LoadActivityData(ctx context.Context, userID string) activity.Snapshot
}

// Service builds weeks from the remote day aggregates. Weeks that ended before
// today no longer change and are kept in an in-process cache.
type Service struct {
	store aggregateLister
	today todaySource
	cache *freecache.Cache
	ttl   time.Duration
	now   activity.Clock
}

// NewService creates the history service. When today is set, the current day of
// the current week comes from it, so the week matches the today view.
func NewService(store aggregateLister, today todaySource, cacheSizeMB int, ttl time.Duration, clock activity.Clock) *Service {
	if cacheSizeMB <= 0 {
		cacheSizeMB = defaultSizeMB
	}
	if ttl <= 0 {
		ttl = defaultWeekTTL
	}
	if clock == nil {
		clock = activity.SystemClock
	}
	return &Service{
		store: store,
		today: today,
		cache: freecache.NewCache(cacheSizeMB * megabyte),
		ttl:   ttl,
		now:   clock,
	}
}

// WeekStart returns the Monday (UTC) of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Week returns the week of userID containing date; days without data are zero.
func (s *Service) Week(ctx context.Context, userID string, date time.Time) (_ *Week, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "history.activity.week")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	monday := WeekStart(date)
	sunday := monday.AddDate(0, 0, daysInWeek-1)
	from, to := activity.Day(monday), activity.Day(sunday)
	span.SetAttributes(
		attribute.String("user", userID),
		attribute.String("from", from),
	)

	today := activity.Day(s.now())
	finished := to < today
	cacheKey := []byte(fmt.Sprintf("week::%s::%s", userID, from))

	if finished {
		if cached, err := s.cache.Get(cacheKey); err == nil {
			week := &Week{}
			if err := json.Unmarshal(cached, week); err == nil {
				span.SetAttributes(attribute.Bool("cached", true))
				return week, nil
			}
			log.Errorf("history: unmarshal cached week %s of %s: %s", from, userID, err)
		}
	}

	aggregates, err := s.store.List(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list aggregates: %w", err)
	}
	byDay := make(map[string]activity.Totals, len(aggregates))
	for _, agg := range aggregates {
		byDay[agg.Day] = agg.Totals
	}

	if s.today != nil && today >= from && today <= to {
		snapshot := s.today.LoadActivityData(ctx, userID)
		if !snapshot.IsNewUser {
			byDay[today] = activity.Totals{
				Steps:      snapshot.Steps,
				DistanceKm: snapshot.DistanceKm,
				Calories:   snapshot.Calories,
			}
		}
	}

	week := &Week{
		UserID: userID,
		From:   from,
		To:     to,
		Days:   make([]DayActivity, 0, daysInWeek),
	}
	for i := 0; i < daysInWeek; i++ {
		d := monday.AddDate(0, 0, i)
		day := activity.Day(d)
		totals := byDay[day]
		week.Days = append(week.Days, DayActivity{
			Day:     day,
			Weekday: d.Weekday().String(),
			Totals:  totals,
		})
		week.Total = week.Total.Add(totals)
	}

	if finished {
		if data, err := json.Marshal(week); err == nil {
			if err := s.cache.Set(cacheKey, data, int(s.ttl.Seconds())); err != nil {
				log.Errorf("history: cache week %s of %s: %s", from, userID, err)
			}
		}
	}

	return week, nil
}
