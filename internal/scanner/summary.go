package scanner

import (
	"context"
	"time"

	"mtfscanner/internal/applog"
	"mtfscanner/internal/store"
	"mtfscanner/internal/types"
)

// SummaryMailer sends the compiled digest. notify.SMTP implements it.
type SummaryMailer interface {
	SendSummary(ctx context.Context, periodStart, periodEnd time.Time, signalCount, closedCount, errorCount int) error
}

// SummaryReporter periodically compiles a digest of everything that
// happened since its last run and emails it out, grounded on
// summary_email_service.py's send_summary.
type SummaryReporter struct {
	Store    *store.Store
	Mailer   SummaryMailer
	Symbols  map[string]string
	Interval time.Duration

	lastRun time.Time
}

func (r *SummaryReporter) Run(ctx context.Context) {
	r.lastRun = time.Now().UTC()
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *SummaryReporter) tick(ctx context.Context) {
	periodEnd := time.Now().UTC()
	periodStart := r.lastRun

	var closedCount, errorCount int
	for alias := range r.Symbols {
		closed, err := r.Store.GetClosedTrades(ctx, alias, types.Direction(""), 100)
		if err != nil {
			applog.Warn("summary: get closed trades for %s: %v", alias, err)
			continue
		}
		for _, t := range closed {
			if t.CloseTimeUTC != nil && !t.CloseTimeUTC.Before(periodStart) && !t.CloseTimeUTC.After(periodEnd) {
				closedCount++
			}
		}
	}

	recentErrors, err := r.Store.RecentErrors(ctx, periodStart)
	if err != nil {
		applog.Warn("summary: recent errors: %v", err)
	} else {
		errorCount = len(recentErrors)
	}

	if r.Mailer != nil {
		if err := r.Mailer.SendSummary(ctx, periodStart, periodEnd, 0, closedCount, errorCount); err != nil {
			applog.Warn("summary: send failed: %v", err)
		}
	}

	r.lastRun = periodEnd
}
