package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the nightly backup job: the current workbook is exported
// and delivered to the administrator chat.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	backupFunc func() error
}

func New(spec string) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		spec: spec,
	}
}

// SetBackupFunction sets the function that exports and delivers the table.
func (s *Scheduler) SetBackupFunction(f func() error) {
	s.backupFunc = f
}

func (s *Scheduler) Start() error {
	if s.backupFunc == nil {
		log.Println("backup function not set, scheduler will not run backups")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		log.Printf("triggered scheduled table backup (%s UTC)", s.spec)
		if err := s.backupFunc(); err != nil {
			log.Printf("scheduled backup failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("scheduler started, table backup on %q UTC", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	log.Println("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
