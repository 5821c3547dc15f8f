package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	maildomain "prepmail-backend/internal/mail/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// TokenUpdateFunc is a callback function that handles token updates
type TokenUpdateFunc = maildomain.TokenUpdateFunc

type Service struct {
	clientID     string
	clientSecret string
}

type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			log.Printf("[Gmail] Failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

func NewService(clientID, clientSecret string) *Service {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// getGmailService creates a Gmail service with the user's access token
func (s *Service) getGmailService(ctx context.Context, accessToken, refreshToken string, onTokenRefresh TokenUpdateFunc) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}

	// Only force refresh if we have a refresh token
	if refreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     google.Endpoint,
	}

	tokenSource := config.TokenSource(ctx, token)

	// Wrap token source to detect refreshes
	wrappedSource := &notifyTokenSource{
		src:      tokenSource,
		current:  token,
		callback: onTokenRefresh,
	}

	client := oauth2.NewClient(ctx, wrappedSource)

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}

	return srv, nil
}

// FetchMessages retrieves up to opts.MaxCount inbox messages, newest
// first, with decoded plain-text bodies
func (s *Service) FetchMessages(ctx context.Context, accessToken, refreshToken string, opts maildomain.FetchOptions, onTokenRefresh TokenUpdateFunc) ([]*maildomain.Message, error) {
	srv, err := s.getGmailService(ctx, accessToken, refreshToken, onTokenRefresh)
	if err != nil {
		return nil, err
	}

	user := "me"

	q := "in:inbox"
	if opts.OnlyUnread {
		q += " is:unread"
	}

	maxCount := opts.MaxCount
	if maxCount <= 0 {
		maxCount = 20
	}

	listResp, err := srv.Users.Messages.List(user).Q(q).MaxResults(int64(maxCount)).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list messages: %v", err)
	}

	messages := make([]*maildomain.Message, 0, len(listResp.Messages))
	for _, ref := range listResp.Messages {
		full, err := srv.Users.Messages.Get(user, ref.Id).Format("full").Do()
		if err != nil {
			log.Printf("[Gmail] Failed to fetch message %s: %v", ref.Id, err)
			continue
		}

		messages = append(messages, &maildomain.Message{
			ID:      full.Id,
			Subject: headerValue(full.Payload, "Subject"),
			Body:    extractBody(full.Payload),
		})
	}

	return messages, nil
}

func headerValue(payload *gmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, h := range payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBody walks the MIME tree and returns the first text/plain
// part, falling back to text/html
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if body := findPart(payload, "text/plain"); body != "" {
		return body
	}
	return findPart(payload, "text/html")
}

func findPart(part *gmail.MessagePart, mimeType string) string {
	if part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
		decoded, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
		return string(decoded)
	}

	for _, child := range part.Parts {
		if body := findPart(child, mimeType); body != "" {
			return body
		}
	}
	return ""
}
