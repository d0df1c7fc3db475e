package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"

	"github.com/oneboxhq/onebox/internal/enum"
	"github.com/oneboxhq/onebox/internal/tracing"
)

// connectMailbox establishes and authenticates an IMAP connection.
// Certificates are verified by default; IMAP_TLS_SKIP_VERIFY is a
// testing-only opt-out.
func (s *IMAPService) connectMailbox(ctx context.Context) (*client.Client, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.connectMailbox")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("server", s.config.ImapHost)
	span.SetTag("port", s.config.ImapPort)

	serverAddr := fmt.Sprintf("%s:%d", s.config.ImapHost, s.config.ImapPort)

	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}

	var c *client.Client
	var err error

	if enum.EmailSecurity(s.config.ImapSecurity) == enum.EmailSecurityTLS {
		tlsConfig := &tls.Config{
			ServerName:         s.config.ImapHost,
			InsecureSkipVerify: s.config.ImapTLSSkipVerify,
		}
		c, err = client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}

	if err != nil {
		err = fmt.Errorf("connection error: %w", err)
		tracing.TraceErr(span, err)
		return nil, err
	}

	c.Timeout = connectTimeout
	caps, err := c.Capability()
	if err != nil {
		c.Logout()
		err = fmt.Errorf("capability error: %w", err)
		tracing.TraceErr(span, err)
		return nil, err
	}
	s.log.Debugf("Server capabilities: %v", caps)

	err = c.Login(s.config.ImapUsername, s.config.ImapPassword)
	if err != nil {
		c.Logout()
		err = fmt.Errorf("login error: %w", err)
		tracing.TraceErr(span, err)
		return nil, err
	}

	c.Timeout = 0

	s.log.Infof("Connected to %s as %s", serverAddr, s.config.ImapUsername)
	return c, nil
}

// disconnectClient logs out with a bounded wait so a dead connection cannot
// hang cycle teardown.
func (s *IMAPService) disconnectClient(c *client.Client) {
	if c == nil {
		return
	}

	c.Timeout = 5 * time.Second

	done := make(chan error, 1)
	go func() {
		done <- c.Logout()
		close(done)
	}()

	select {
	case err := <-done:
		if err != nil {
			s.log.Warnf("Error during logout: %v", err)
		}
	case <-time.After(5 * time.Second):
		s.log.Warn("Logout timed out")
	}
}
