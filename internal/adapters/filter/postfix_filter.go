package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/spam-doctor/internal/config"
	"github.com/mikey/spam-doctor/internal/core"
	"github.com/mikey/spam-doctor/internal/whitelist"
	"go.uber.org/zap"
)

// Checker runs spam detection on message text
type Checker interface {
	Check(ctx context.Context, text string, isHTML bool) (*core.DetectionResult, error)
}

// PostfixFilter is a Postfix content filter: it receives mail over SMTP,
// checks it, adds spam headers and hands it back to Postfix
type PostfixFilter struct {
	checker   Checker
	whitelist *whitelist.Checker
	cfg       config.ServerConfig
	logger    *zap.Logger
	server    *smtp.Server
	forward   func(sender string, recipients []string, data []byte) error
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	checker Checker,
	whitelistChecker *whitelist.Checker,
	cfg config.ServerConfig,
	logger *zap.Logger,
) *PostfixFilter {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = "[**SPAM**] "
	}

	f := &PostfixFilter{
		checker:   checker,
		whitelist: whitelistChecker,
		cfg:       cfg,
		logger:    logger,
	}
	f.forward = f.sendToPostfix

	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Addr = cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	return f
}

// ListenAndServe accepts connections until Stop is called
func (f *PostfixFilter) ListenAndServe() error {
	f.logger.Info("Postfix filter starting", zap.String("address", f.cfg.ListenAddress))
	if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
		return fmt.Errorf("SMTP server error: %w", err)
	}
	return nil
}

// Stop closes the listener and all open sessions
func (f *PostfixFilter) Stop() error {
	f.logger.Info("Postfix filter stopping")
	return f.server.Close()
}

// filterMessage checks a raw message and returns it with spam headers added.
// A rejection is returned as an *smtp.SMTPError. Failures while checking
// never drop the message.
func (f *PostfixFilter) filterMessage(sender string, raw []byte) ([]byte, error) {
	head, rest := splitMessage(raw)

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		f.logger.Warn("Failed to parse message, passing it through", zap.String("sender", sender), zap.Error(err))
		return raw, nil
	}

	if f.whitelist != nil && f.whitelist.IsWhitelisted(sender) {
		f.logger.Info("Sender is whitelisted, skipping check", zap.String("sender", sender))
		return assembleMessage([][2]string{{f.cfg.Headers.Spam, "false"}}, head, rest), nil
	}

	var result *core.DetectionResult
	body, analysisErr := extractTextFromMessage(msg)
	if analysisErr == nil && strings.TrimSpace(body.Text) != "" {
		ctx, cancel := context.WithTimeout(context.Background(), f.cfg.CheckTimeout)
		result, analysisErr = f.checker.Check(ctx, body.Text, body.IsHTML)
		cancel()
	}
	if analysisErr != nil {
		f.logger.Error("Failed to check message", zap.String("sender", sender), zap.Error(analysisErr))
		result = nil
	}

	isSpam := result != nil && result.IsSpamByClassifier
	if isSpam && f.cfg.BlockSpam {
		f.logger.Info("Rejecting spam message",
			zap.String("sender", sender),
			zap.String("check_id", result.ID),
			zap.Float64("score", result.CombinedScore))
		return nil, &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as spam (score: %.2f)", result.CombinedScore),
		}
	}

	if isSpam && f.cfg.ModifySubject && f.cfg.SubjectPrefix != "" {
		head = rewriteSubject(head, f.cfg.SubjectPrefix)
	}

	f.logger.Info("Processed message",
		zap.String("sender", sender),
		zap.Bool("is_spam", isSpam),
		zap.Bool("checked", result != nil))

	return assembleMessage(f.resultHeaders(result, analysisErr), head, rest), nil
}

func (f *PostfixFilter) resultHeaders(result *core.DetectionResult, analysisErr error) [][2]string {
	h := f.cfg.Headers
	if result == nil {
		fields := [][2]string{{h.Spam, "false"}}
		if analysisErr != nil {
			fields = append(fields, [2]string{"X-Spam-Analysis-Error", analysisErr.Error()})
		}
		return fields
	}

	terms := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		terms = append(terms, m.Term)
	}
	return [][2]string{
		{h.Spam, strconv.FormatBool(result.IsSpamByClassifier)},
		{h.Score, fmt.Sprintf("%.4f", result.CombinedScore)},
		{h.Probability, fmt.Sprintf("%.4f", result.MLProbability)},
		{h.Terms, strings.Join(terms, ", ")},
		{h.CheckID, result.ID},
	}
}

// splitMessage separates the header block, including the line ending of its
// last line, from the blank line and body that follow
func splitMessage(raw []byte) (head, rest []byte) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return raw[:i+2], raw[i+2:]
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return raw[:i+1], raw[i+1:]
	}
	return raw, nil
}

func lineEnding(head []byte) string {
	if bytes.Contains(head, []byte("\r\n")) {
		return "\r\n"
	}
	return "\n"
}

// assembleMessage prepends fields to the original header block
func assembleMessage(fields [][2]string, head, rest []byte) []byte {
	eol := lineEnding(head)
	clean := strings.NewReplacer("\r", " ", "\n", " ")

	var out bytes.Buffer
	for _, field := range fields {
		if field[0] == "" {
			continue
		}
		value := mime.QEncoding.Encode("utf-8", clean.Replace(field[1]))
		fmt.Fprintf(&out, "%s: %s%s", field[0], value, eol)
	}
	out.Write(head)
	out.Write(rest)
	return out.Bytes()
}

// rewriteSubject prefixes the Subject header, folding lines included. A
// subject that already carries the prefix is left alone.
func rewriteSubject(head []byte, prefix string) []byte {
	eol := lineEnding(head)
	lines := bytes.SplitAfter(head, []byte("\n"))

	start := -1
	for i, line := range lines {
		if len(line) >= 8 && strings.EqualFold(string(line[:8]), "subject:") {
			start = i
			break
		}
	}
	if start < 0 {
		out := append([]byte(nil), head...)
		return append(out, []byte("Subject: "+mime.QEncoding.Encode("utf-8", prefix)+eol)...)
	}

	end := start + 1
	for end < len(lines) && len(lines[end]) > 0 && (lines[end][0] == ' ' || lines[end][0] == '\t') {
		end++
	}

	var folded strings.Builder
	for _, line := range lines[start:end] {
		folded.WriteString(strings.TrimRight(string(line), "\r\n"))
	}
	original := strings.TrimSpace(folded.String()[len("subject:"):])

	decoded, err := decodeEncodedHeader(original)
	if err != nil {
		decoded = original
	}
	if strings.HasPrefix(decoded, prefix) {
		return head
	}

	var out bytes.Buffer
	for _, line := range lines[:start] {
		out.Write(line)
	}
	out.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", prefix+decoded) + eol)
	for _, line := range lines[end:] {
		out.Write(line)
	}
	return out.Bytes()
}

// sendToPostfix sends the processed message back to Postfix for delivery
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, data []byte) error {
	addr := net.JoinHostPort(f.cfg.Postfix.Address, strconv.Itoa(f.cfg.Postfix.Port))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		accepted = true
	}
	if !accepted {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// the message is already queued
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data checks the message and reinjects it
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	out, err := s.filter.filterMessage(s.sender, raw)
	if err != nil {
		return err
	}

	if !s.filter.cfg.Postfix.Enabled {
		s.filter.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
		return nil
	}
	if err := s.filter.forward(s.sender, s.recipients, out); err != nil {
		s.filter.logger.Error("Failed to send message back to Postfix",
			zap.Error(err),
			zap.String("sender", s.sender))
		return err
	}
	return nil
}

// Logout is a no-op
func (s *smtpSession) Logout() error {
	return nil
}
