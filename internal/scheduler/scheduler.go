package scheduler

import (
	"context"
	"errors"
	"fmt"
	htmlesc "html"
	"strings"
	"time"

	"go.uber.org/zap"

	"classtrack/internal/mailer"
	"classtrack/internal/metrics"
	"classtrack/internal/observability"
	"classtrack/internal/reminder"
	"classtrack/internal/user"
)

// Users supplies accounts grouped by stored timezone.
type Users interface {
	ListByTimezone(ctx context.Context, zone string) ([]user.User, error)
}

// Reminders supplies and consumes due reminders.
type Reminders interface {
	DueForUsers(ctx context.Context, userIDs []string, start, end time.Time) ([]reminder.Due, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

// Summary reports what one scheduler pass did.
type Summary struct {
	Skipped            bool   `json:"skipped,omitempty"`
	UTCHour            int    `json:"utcHour"`
	TimezonesProcessed int    `json:"timezonesProcessed"`
	UsersProcessed     int    `json:"usersProcessed"`
	RemindersFound     int    `json:"remindersFound"`
	EmailsSent         int    `json:"emailsSent"`
	RemindersDeleted   int64  `json:"remindersDeleted"`
	Errors             int    `json:"errors"`
	DurationMs         int64  `json:"durationMs"`
	Message            string `json:"message,omitempty"`
}

// Scheduler runs the hourly reminder dispatch pass. Each invocation is
// stateless: the table decides which zones are due at the current UTC hour,
// and each due user gets one email bundling all reminders inside their local
// day window. Reminders are deleted only after a confirmed send.
type Scheduler struct {
	table     *ZoneTable
	users     Users
	reminders Reminders
	mail      mailer.Mailer
	locker    Locker
	log       *zap.SugaredLogger
	now       func() time.Time
}

// New creates a scheduler. locker may be nil, in which case overlapping
// invocations are not guarded against.
func New(table *ZoneTable, users Users, reminders Reminders, mail mailer.Mailer, locker Locker, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		table:     table,
		users:     users,
		reminders: reminders,
		mail:      mail,
		locker:    locker,
		log:       log,
		now:       time.Now,
	}
}

// Run executes one pass and returns its summary. Only missing configuration
// is a top-level error; per-zone and per-user failures are counted and the
// pass continues.
func (s *Scheduler) Run(ctx context.Context) (Summary, error) {
	if s.users == nil || s.reminders == nil {
		return Summary{}, errors.New("scheduler: store not configured")
	}
	if s.mail == nil {
		return Summary{}, errors.New("scheduler: mailer not configured")
	}

	start := s.now()
	now := start.UTC()
	sum := Summary{UTCHour: now.Hour()}

	if ok, release := s.tryLock(ctx); !ok {
		sum.Skipped = true
		sum.Message = "another run holds the scheduler lock"
		metrics.SchedulerSkips.Inc()
		return sum, nil
	} else {
		defer release()
	}
	defer func() {
		sum.DurationMs = time.Since(start).Milliseconds()
		metrics.SchedulerRuns.Inc()
		metrics.SchedulerDuration.Observe(time.Since(start).Seconds())
	}()

	zones := s.table.DueZones(sum.UTCHour)
	if len(zones) == 0 {
		sum.Message = "no timezones to process for this hour"
		return sum, nil
	}

	for _, zone := range zones {
		if err := s.processZone(ctx, now, zone, &sum); err != nil {
			s.log.Errorw("timezone pass failed", "zone", zone, "err", err)
			observability.CaptureErr(err)
			metrics.SchedulerErrors.Inc()
			sum.Errors++
		}
	}
	sum.TimezonesProcessed = len(zones)
	return sum, nil
}

func (s *Scheduler) processZone(ctx context.Context, now time.Time, zone string, sum *Summary) error {
	users, err := s.users.ListByTimezone(ctx, zone)
	if err != nil {
		return fmt.Errorf("list users in %s: %w", zone, err)
	}
	if len(users) == 0 {
		return nil
	}

	winStart, winEnd := s.table.LocalDayWindow(now, zone)
	ids := make([]string, len(users))
	byID := make(map[string]user.User, len(users))
	for i, u := range users {
		ids[i] = u.ID
		byID[u.ID] = u
	}

	due, err := s.reminders.DueForUsers(ctx, ids, winStart, winEnd)
	if err != nil {
		return fmt.Errorf("query due reminders in %s: %w", zone, err)
	}
	sum.RemindersFound += len(due)
	if len(due) == 0 {
		return nil
	}

	grouped := make(map[string][]reminder.Due)
	order := make([]string, 0, len(users))
	for _, d := range due {
		if _, seen := grouped[d.UserID]; !seen {
			order = append(order, d.UserID)
		}
		grouped[d.UserID] = append(grouped[d.UserID], d)
	}

	for _, userID := range order {
		u := byID[userID]
		items := grouped[userID]
		sum.UsersProcessed++

		msg := composeEmail(u, zone, items)
		if err := s.mail.Send(ctx, msg); err != nil {
			s.log.Errorw("reminder email failed", "user", u.ID, "zone", zone, "err", err)
			observability.CaptureErr(err)
			metrics.SchedulerErrors.Inc()
			sum.Errors++
			continue // reminders stay persisted for a retry
		}
		sum.EmailsSent++
		metrics.EmailsSent.Inc()

		delIDs := make([]string, len(items))
		for i, d := range items {
			delIDs[i] = d.ID
		}
		n, err := s.reminders.DeleteByIDs(ctx, delIDs)
		if err != nil {
			s.log.Errorw("reminder cleanup failed", "user", u.ID, "err", err)
			observability.CaptureErr(err)
			metrics.SchedulerErrors.Inc()
			sum.Errors++
			continue
		}
		sum.RemindersDeleted += n
		metrics.RemindersDeleted.Add(float64(n))
	}
	return nil
}

// tryLock claims the run lock. Returns true with a release func on success,
// and true when no locker is configured.
func (s *Scheduler) tryLock(ctx context.Context) (bool, func()) {
	if s.locker == nil {
		return true, func() {}
	}
	ok, err := s.locker.TryLock(ctx)
	if err != nil {
		// redis down: run unguarded rather than not at all
		s.log.Warnw("scheduler lock unavailable", "err", err)
		return true, func() {}
	}
	if !ok {
		return false, nil
	}
	return true, func() { s.locker.Release(context.Background()) }
}

func composeEmail(u user.User, zone string, items []reminder.Due) mailer.Message {
	// names and messages are user input, escape them before they hit markup
	var html, text strings.Builder
	fmt.Fprintf(&html, "<h1>Hi %s,</h1><p>You have %d class(es) today:</p><ul>", htmlesc.EscapeString(u.Name), len(items))
	fmt.Fprintf(&text, "Hi %s,\n\nYou have %d class(es) today:\n", u.Name, len(items))
	for _, d := range items {
		if d.Message != "" {
			fmt.Fprintf(&html, "<li><strong>%s</strong> - <em>&quot;%s&quot;</em></li>", htmlesc.EscapeString(d.CourseName), htmlesc.EscapeString(d.Message))
			fmt.Fprintf(&text, "- %s: %q\n", d.CourseName, d.Message)
		} else {
			fmt.Fprintf(&html, "<li><strong>%s</strong></li>", htmlesc.EscapeString(d.CourseName))
			fmt.Fprintf(&text, "- %s\n", d.CourseName)
		}
	}
	html.WriteString("</ul><p>Don't forget to mark your attendance!</p>")
	fmt.Fprintf(&html, "<p><small>Timezone: %s</small></p>", zone)
	text.WriteString("\nDon't forget to mark your attendance!\n")

	return mailer.Message{
		ToEmail:  u.Email,
		ToName:   u.Name,
		Subject:  fmt.Sprintf("You have %d class(es) today!", len(items)),
		HTMLBody: html.String(),
		TextBody: text.String(),
	}
}
