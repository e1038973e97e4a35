package cron

import (
	log "log/slog"
	"sort"
	"time"

	"trackforge/internal/job"

	"github.com/robfig/cron/v3"
)

// Manager wraps a robfig/cron engine configured with the Scheduler's named
// time zone. Daily and refresh triggers both dispatch the same
// SchedulerJob; refresh is only registered when a non-empty schedule is
// configured.
type Manager struct {
	engine          *cron.Cron
	schedulerJob    *job.SchedulerJob
	dailySchedule   string
	refreshSchedule string
}

func NewCronManager(schedulerJob *job.SchedulerJob, dailySchedule, refreshSchedule string, tz *time.Location) *Manager {
	return &Manager{
		engine:          cron.New(cron.WithLocation(tz)),
		schedulerJob:    schedulerJob,
		dailySchedule:   dailySchedule,
		refreshSchedule: refreshSchedule,
	}
}

// RegisterJobs registers the daily trigger unconditionally and the refresh
// trigger only if one was configured.
func (m *Manager) RegisterJobs() error {
	entry, err := m.engine.AddJob(m.dailySchedule, m.schedulerJob)
	if err != nil {
		return err
	}
	log.Info("cron daily trigger registered", "schedule", m.dailySchedule, "entry_id", entry)

	if m.refreshSchedule == "" {
		log.Info("cron refresh trigger disabled")
		return nil
	}
	refreshEntry, err := m.engine.AddJob(m.refreshSchedule, m.schedulerJob)
	if err != nil {
		return err
	}
	log.Info("cron refresh trigger registered", "schedule", m.refreshSchedule, "entry_id", refreshEntry)
	return nil
}

func (m *Manager) Start() {
	m.engine.Start()
	for _, e := range m.engine.Entries() {
		log.Info("cron next run", "entry_id", e.ID, "next", e.Next)
	}
}

func (m *Manager) Stop() {
	log.Info("cron engine stopping")
	m.engine.Stop()
}

// ScheduleEntry is one configured trigger's next firing time, for the
// GET /cron/schedule diagnostic endpoint.
type ScheduleEntry struct {
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next"`
}

// Schedule reports every configured trigger alongside its next run, in
// registration order (daily first, then refresh if enabled).
func (m *Manager) Schedule() []ScheduleEntry {
	entries := m.engine.Entries()
	// A running engine reports entries ordered by next fire time; entry IDs
	// are assigned in registration order.
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	result := make([]ScheduleEntry, 0, len(entries))
	schedules := []string{m.dailySchedule}
	if m.refreshSchedule != "" {
		schedules = append(schedules, m.refreshSchedule)
	}
	for i, e := range entries {
		sched := ""
		if i < len(schedules) {
			sched = schedules[i]
		}
		result = append(result, ScheduleEntry{Schedule: sched, Next: e.Next})
	}
	return result
}

// TriggerNow runs the scheduler job immediately, equivalent to a daily
// tick firing, for the manual POST /cron/trigger endpoint.
func (m *Manager) TriggerNow() {
	m.schedulerJob.Run()
}
