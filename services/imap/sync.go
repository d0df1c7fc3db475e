package imap

import (
	"context"
	"io"
	"sync"
	"time"

	go_imap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/oneboxhq/onebox/internal/tracing"
	"github.com/oneboxhq/onebox/services/email_processor"
)

// syncCycle runs one connect -> select -> search -> fetch -> process pass.
// Connection and search errors abort the cycle; the next scheduled tick
// starts a fresh attempt. Per-message failures are logged and skipped.
func (s *IMAPService) syncCycle(ctx context.Context) error {
	span, ctx := tracing.StartTracerSpan(ctx, "IMAPService.syncCycle")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	cycleID := uuid.New().String()[:8]
	span.SetTag("cycle.id", cycleID)

	c, err := s.connectMailbox(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	defer s.disconnectClient(c)

	c.Timeout = connectTimeout
	mbox, err := c.Select(s.config.Folder, false)
	c.Timeout = 0
	if err != nil {
		err = errors.Wrapf(err, "error selecting folder %s", s.config.Folder)
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Infof("[%s] Selected %s - Messages: %d, Unseen: %d", cycleID, s.config.Folder, mbox.Messages, mbox.Unseen)

	// Unseen messages within a rolling window, recomputed every cycle.
	criteria := go_imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{go_imap.SeenFlag}
	criteria.Since = time.Now().AddDate(0, 0, -searchWindowDays)

	c.Timeout = connectTimeout
	uids, err := c.UidSearch(criteria)
	c.Timeout = 0
	if err != nil {
		err = errors.Wrap(err, "error searching for unseen messages")
		tracing.TraceErr(span, err)
		return err
	}

	if len(uids) == 0 {
		s.log.Infof("[%s] No new messages", cycleID)
		return nil
	}

	s.log.Infof("[%s] Found %d unseen message(s)", cycleID, len(uids))
	span.LogFields(tracingLog.Int("message_count", len(uids)))

	return s.fetchAndProcess(ctx, c, cycleID, uids)
}

// fetchAndProcess streams the given UIDs through the processor with a
// bounded-concurrency task group. Message reads stay on the fetch loop; the
// parse-and-persist work runs on worker tasks joined before returning.
func (s *IMAPService) fetchAndProcess(ctx context.Context, c *client.Client, cycleID string, uids []uint32) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.fetchAndProcess")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	seqSet := new(go_imap.SeqSet)
	seqSet.AddNum(uids...)

	items := []go_imap.FetchItem{
		go_imap.FetchEnvelope,
		go_imap.FetchFlags,
		go_imap.FetchUid,
		"BODY.PEEK[]",
	}

	messages := make(chan *go_imap.Message, 10)
	done := make(chan error, 1)

	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, maxConcurrentMessages)
	processed := 0

	for msg := range messages {
		raw := extractFullMessage(msg)
		inbound := email_processor.InboundMessage{
			Folder:   s.config.Folder,
			UID:      msg.Uid,
			Envelope: msg.Envelope,
			Raw:      raw,
		}
		processed++

		wg.Add(1)
		semaphore <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := s.processor.ProcessMessage(ctx, inbound); err != nil {
				// Contained per message: log, skip, keep the cycle going.
				s.log.Errorf("[%s] Error processing message uid=%d: %v", cycleID, inbound.UID, err)
			}
		}()
	}

	wg.Wait()

	if err := <-done; err != nil {
		err = errors.Wrap(err, "error fetching messages")
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Infof("[%s] Processed %d message(s)", cycleID, processed)
	return nil
}

// extractFullMessage pulls the complete RFC 5322 bytes out of a fetch result.
func extractFullMessage(msg *go_imap.Message) []byte {
	for section, literal := range msg.Body {
		if len(section.Path) == 0 && section.Specifier == go_imap.EntireSpecifier {
			data, err := io.ReadAll(literal)
			if err == nil {
				return data
			}
		}
	}
	return nil
}
