package imap

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	maildomain "prepmail-backend/internal/mail/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// IMAPService fetches mail over IMAP for password-based accounts
type IMAPService struct{}

func NewService() *IMAPService {
	return &IMAPService{}
}

// FetchMessages retrieves up to opts.MaxCount messages from INBOX,
// newest first
func (s *IMAPService) FetchMessages(ctx context.Context, server string, port int, email, password string, opts maildomain.FetchOptions) ([]*maildomain.Message, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", server, port), nil)
	if err != nil {
		return nil, fmt.Errorf("imap dial failed: %w", err)
	}
	defer c.Logout()

	if err := c.Login(email, password); err != nil {
		return nil, fmt.Errorf("imap login failed: %w", err)
	}

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("imap select failed: %w", err)
	}

	if mbox.Messages == 0 {
		return nil, nil
	}

	maxCount := opts.MaxCount
	if maxCount <= 0 {
		maxCount = 20
	}

	seqset := new(imap.SeqSet)
	if opts.OnlyUnread {
		criteria := imap.NewSearchCriteria()
		criteria.WithoutFlags = []string{imap.SeenFlag}
		ids, err := c.Search(criteria)
		if err != nil {
			return nil, fmt.Errorf("imap search failed: %w", err)
		}
		if len(ids) == 0 {
			return nil, nil
		}
		if len(ids) > maxCount {
			ids = ids[len(ids)-maxCount:]
		}
		seqset.AddNum(ids...)
	} else {
		from := uint32(1)
		if mbox.Messages > uint32(maxCount) {
			from = mbox.Messages - uint32(maxCount) + 1
		}
		seqset.AddRange(from, mbox.Messages)
	}

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	msgChan := make(chan *imap.Message, maxCount)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, msgChan)
	}()

	var messages []*maildomain.Message
	for msg := range msgChan {
		parsed := parseMessage(msg, section)
		if parsed != nil {
			messages = append(messages, parsed)
		}
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch failed: %w", err)
	}

	// Newest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func parseMessage(msg *imap.Message, section *imap.BodySectionName) *maildomain.Message {
	if msg == nil || msg.Envelope == nil {
		return nil
	}

	result := &maildomain.Message{
		ID:      msg.Envelope.MessageId,
		Subject: msg.Envelope.Subject,
	}

	body := msg.GetBody(section)
	if body == nil {
		return result
	}

	mr, err := mail.CreateReader(body)
	if err != nil {
		log.Printf("[IMAP] Failed to parse message %s: %v", result.ID, err)
		return result
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		if _, ok := part.Header.(*mail.InlineHeader); ok {
			data, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			text := string(data)
			if strings.TrimSpace(text) != "" {
				result.Body = text
				break
			}
		}
	}

	return result
}
