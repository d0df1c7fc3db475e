package imap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneboxhq/onebox/config"
	"github.com/oneboxhq/onebox/internal/logger"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
		Encoder: "console",
	})
	appLogger.InitLogger()
	return appLogger
}

func newTestService() *IMAPService {
	return &IMAPService{
		config: &config.MailboxConfig{
			ImapHost:     "127.0.0.1",
			ImapPort:     1,
			ImapUsername: "user@example.com",
			ImapPassword: "secret",
			ImapSecurity: "none",
			Folder:       "INBOX",
			PollInterval: "5m",
		},
		log: getLogger(),
	}
}

func TestTriggerSyncRejectsOverlappingCycle(t *testing.T) {
	s := newTestService()

	// Simulate an in-flight cycle holding the mailbox connection.
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	err := s.TriggerSync(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestTriggerSyncReleasesGuardAfterFailedCycle(t *testing.T) {
	s := newTestService()

	// Nothing listens on port 1, so the cycle fails at connect.
	err := s.TriggerSync(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSyncInProgress)

	// The guard must be released: a fresh cycle attempts a new connection
	// instead of reporting an overlap.
	err = s.TriggerSync(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSyncInProgress)
}

func TestStartRegistersSingleScheduledJob(t *testing.T) {
	s := newTestService()

	err := s.Start(context.Background())
	require.NoError(t, err)
	defer s.Stop()

	assert.Len(t, s.cron.Entries(), 1)
}

func TestStopCompletesWithinTimeout(t *testing.T) {
	s := newTestService()

	require.NoError(t, s.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		_ = s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatal("Stop did not complete in time")
	}
}
