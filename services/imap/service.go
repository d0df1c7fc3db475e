package imap

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/oneboxhq/onebox/config"
	"github.com/oneboxhq/onebox/interfaces"
	"github.com/oneboxhq/onebox/internal/logger"
	"github.com/oneboxhq/onebox/services/email_processor"
)

const (
	connectTimeout = 30 * time.Second
	// cycleTimeout bounds a single poll cycle so a stuck connection cannot
	// stall the scheduler forever.
	cycleTimeout = 4 * time.Minute

	searchWindowDays      = 30
	maxConcurrentMessages = 4
)

// ErrSyncInProgress is returned when a poll cycle is requested while another
// cycle holds the mailbox connection.
var ErrSyncInProgress = errors.New("poll cycle already in progress")

// IMAPService polls the mailbox on a fixed schedule. The IMAP connection is
// owned by the running cycle and never escapes the service; at most one
// connection is open at any time.
type IMAPService struct {
	config    *config.MailboxConfig
	processor *email_processor.Processor
	log       logger.Logger

	cron      *cronv3.Cron
	syncMutex sync.Mutex
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewIMAPService(cfg *config.MailboxConfig, processor *email_processor.Processor, log logger.Logger) interfaces.IMAPService {
	return &IMAPService{
		config:    cfg,
		processor: processor,
		log:       log,
	}
}

// Start schedules the recurring poll cycle and fires the first cycle
// immediately. Exactly one recurring job is registered; overlapping runs are
// skipped by the scheduler and rejected by the single-flight guard.
func (s *IMAPService) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	interval := s.config.PollInterval
	if interval == "" {
		interval = "5m"
	}

	c := cronv3.New(cronv3.WithChain(
		cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
		cronv3.Recover(cronv3.DefaultLogger),
	))

	_, err := c.AddFunc("@every "+interval, func() {
		if err := s.TriggerSync(s.ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
			s.log.Errorf("Poll cycle failed: %v", err)
		}
	})
	if err != nil {
		return errors.Wrap(err, "failed to schedule poll cycle")
	}

	c.Start()
	s.cron = c

	// First cycle runs at startup, not after the first delay.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.TriggerSync(s.ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
			s.log.Errorf("Initial poll cycle failed: %v", err)
		}
	}()

	s.log.Infof("Mailbox poller started with interval %s", interval)
	return nil
}

// Stop halts the scheduler and waits for any in-flight cycle to finish.
func (s *IMAPService) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}

	if s.cron != nil {
		stopCtx := s.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(10 * time.Second):
			s.log.Warn("Timeout waiting for scheduled poll cycle to stop")
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("Mailbox poller stopped")
	case <-time.After(10 * time.Second):
		s.log.Warn("Timeout waiting for poll cycle to complete")
	}

	return nil
}

// TriggerSync runs one poll cycle. A second call while a cycle is running
// returns ErrSyncInProgress instead of opening a second connection.
func (s *IMAPService) TriggerSync(ctx context.Context) error {
	if !s.syncMutex.TryLock() {
		return ErrSyncInProgress
	}
	defer s.syncMutex.Unlock()

	cycleCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()

	return s.syncCycle(cycleCtx)
}
