// Package service contains the service layer for the SSQ API
package service

import (
	"context"
	"time"

	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
	"github.com/robfig/cron/v3"
)

const cronActor = "cron"

// CronService runs the scheduled jobs
type CronService struct {
	c             *cron.Cron
	crawlSchedule string
	crawlService  *CrawlService
	authService   *AuthService
}

// NewCronService creates a new CronService
func NewCronService(crawlSchedule string, crawlService *CrawlService, authService *AuthService) *CronService {
	return &CronService{
		c:             cron.New(),
		crawlSchedule: crawlSchedule,
		crawlService:  crawlService,
		authService:   authService,
	}
}

// Start registers the jobs and starts the scheduler
func (cs *CronService) Start() {
	zaplogger.Info("Initializing CronService")

	// Draws are on Tue, Thu and Sun evenings
	cs.addScheduledJob("History CRAWL Job", cs.historyCrawlJob, cs.crawlSchedule)
	cs.addScheduledJob("Sessions PURGE Job", cs.sessionsPurgeJob, "15 4 * * *") // Once at 04:15am

	cs.addStartupJob("Sessions PURGE Job", cs.sessionsPurgeJob, 5*time.Second)

	cs.c.Start()
}

// Stop stops the scheduler and waits for running jobs
func (cs *CronService) Stop() context.Context {
	return cs.c.Stop()
}

func (cs *CronService) addStartupJob(name string, job func(), delay time.Duration) {
	go func() {
		time.Sleep(delay)
		zaplogger.Info("STARTED STARTUP job", zaplogger.Fields{"job": name})
		job()
		zaplogger.Info("COMPLETED STARTUP job", zaplogger.Fields{"job": name})
	}()
	zaplogger.Info("QUEUED STARTUP job", zaplogger.Fields{"job": name})
}

func (cs *CronService) addScheduledJob(name string, job func(), schedule string) {
	_, err := cs.c.AddFunc(schedule, func() {
		zaplogger.Info("STARTED SCHEDULED JOB", zaplogger.Fields{"job": name})
		job()
		zaplogger.Info("COMPLETED SCHEDULED JOB", zaplogger.Fields{"job": name})
	})
	if err != nil {
		zaplogger.Error("FAILED TO QUEUE SCHEDULED JOB", zaplogger.Fields{
			"job":   name,
			"error": err.Error(),
		})
		return
	}
	zaplogger.Info("QUEUED SCHEDULED job", zaplogger.Fields{
		"job":      name,
		"schedule": schedule,
	})
}

func (cs *CronService) historyCrawlJob() {
	jobName := "History CRAWL Job "
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := cs.crawlService.Crawl(ctx, cronActor)
	if err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{"error": err.Error()})
		return
	}
	zaplogger.Info(jobName, zaplogger.Fields{
		"source":    summary.Source,
		"synthetic": summary.Synthetic,
		"imported":  summary.Imported,
	})
}

func (cs *CronService) sessionsPurgeJob() {
	jobName := "Sessions PURGE Job "
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := cs.authService.PurgeExpiredSessions(ctx)
	if err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{"error": err.Error()})
		return
	}
	zaplogger.Info(jobName, zaplogger.Fields{"purged": purged})
}
