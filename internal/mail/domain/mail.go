package domain

import (
	"context"

	"golang.org/x/oauth2"
)

// Message is one raw email handed to the sync pipeline
type Message struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// FetchOptions bounds a mailbox fetch
type FetchOptions struct {
	MaxCount   int
	OnlyUnread bool
}

// TokenUpdateFunc is called when the OAuth token is refreshed so the
// rotated token can be persisted
type TokenUpdateFunc func(token *oauth2.Token) error

// MailProvider yields a bounded list of raw messages for a user
type MailProvider interface {
	FetchMessages(ctx context.Context, accessToken, refreshToken string, opts FetchOptions, onTokenRefresh TokenUpdateFunc) ([]*Message, error)
}
