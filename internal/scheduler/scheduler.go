// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dicodehq/campaign-engine/internal/service"
)

// Start wires the three fixed-schedule jobs: notification dispatch every
// five minutes, reminder and recurrence sweeps daily. Each tick is a
// bounded sweep that either finishes or is retried on the next tick.
func Start(
	dispatch *service.DispatchService,
	reminders *service.ReminderService,
	recurrence *service.RecurrenceService,
) *cron.Cron {
	c := cron.New()

	c.AddFunc("*/5 * * * *", func() {
		if _, err := dispatch.Dispatch(context.Background(), time.Now()); err != nil {
			log.Println("⚠️ dispatch run failed:", err)
		}
	})

	c.AddFunc("0 6 * * *", func() {
		if _, err := reminders.Run(time.Now()); err != nil {
			log.Println("⚠️ reminder run failed:", err)
		}
	})

	c.AddFunc("30 6 * * *", func() {
		if _, err := recurrence.Run(time.Now()); err != nil {
			log.Println("⚠️ recurrence run failed:", err)
		}
	})

	c.Start()
	log.Println("🚀 schedulers started: dispatch */5m, reminders 06:00, recurrence 06:30")
	return c
}
