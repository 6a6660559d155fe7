// internal/service/schedule/followups.go
//
// Package schedule runs the periodic jobs. The only one today reminds each
// center of the open leads whose follow-up date falls on the current day.
package schedule

import (
	"context"
	"fmt"
	"time"

	"edman-service/internal/domain/lead"
	wstypes "edman-service/internal/domain/websocket"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type FollowUpStore interface {
	DueFollowUps(ctx context.Context, from, to time.Time) ([]lead.FollowUp, error)
}

type Notifier interface {
	NotifyUser(userID string, event wstypes.EventType, data interface{})
}

type Summary struct {
	Centers int
	Leads   int
}

type FollowUpScheduler struct {
	leads    FollowUpStore
	notifier Notifier
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
	timeout  time.Duration
}

func NewFollowUpScheduler(leads FollowUpStore, notifier Notifier, logger *zap.Logger) *FollowUpScheduler {
	return &FollowUpScheduler{
		leads:    leads,
		notifier: notifier,
		logger:   logger,
		cron:     cron.New(),
		now:      time.Now,
		timeout:  time.Minute,
	}
}

// Start registers the reminder under spec, a standard five-field cron
// expression, and starts the scheduler in its own goroutine.
func (s *FollowUpScheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("invalid follow-up schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("follow-up reminders scheduled", zap.String("schedule", spec))
	return nil
}

// Stop waits for a running reminder to finish.
func (s *FollowUpScheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("follow-up scheduler did not stop in time")
	}
}

func (s *FollowUpScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("follow-up reminder run failed", zap.Error(err))
	}
}

// RunOnce sends one lead.followups_due event per center with open leads due
// today.
func (s *FollowUpScheduler) RunOnce(ctx context.Context) (Summary, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due, err := s.leads.DueFollowUps(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load due follow-ups: %w", err)
	}

	byCenter := make(map[string]*wstypes.FollowUpsDueData)
	owners := make(map[string]string)
	var order []string
	for _, f := range due {
		data, ok := byCenter[f.CenterID]
		if !ok {
			data = &wstypes.FollowUpsDueData{CenterID: f.CenterID}
			byCenter[f.CenterID] = data
			owners[f.CenterID] = f.CenterUserID
			order = append(order, f.CenterID)
		}
		data.LeadIDs = append(data.LeadIDs, f.LeadID)
		data.Count++
	}

	for _, centerID := range order {
		s.notifier.NotifyUser(owners[centerID], wstypes.EventFollowUpsDue, *byCenter[centerID])
	}

	summary := Summary{Centers: len(order), Leads: len(due)}
	s.logger.Info("follow-up reminders sent",
		zap.Int("centers", summary.Centers),
		zap.Int("leads", summary.Leads),
		zap.Time("day", from),
	)
	return summary, nil
}
