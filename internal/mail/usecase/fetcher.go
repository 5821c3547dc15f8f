package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	authrepo "prepmail-backend/internal/auth/repository"
	maildomain "prepmail-backend/internal/mail/domain"
	"prepmail-backend/pkg/crypto"
	"prepmail-backend/pkg/imap"

	"golang.org/x/oauth2"
)

var ErrNoMailAccount = errors.New("no mail account linked")

// MessageFetcher yields a user's recent messages regardless of which
// mail backend the account is linked to
type MessageFetcher interface {
	Fetch(ctx context.Context, userID string, opts maildomain.FetchOptions) ([]*maildomain.Message, error)
}

// accountFetcher routes to Gmail or IMAP based on the user's provider
type accountFetcher struct {
	userRepo      authrepo.UserRepository
	gmailProvider maildomain.MailProvider
	imapService   *imap.IMAPService
	encryptionKey string
}

// NewAccountFetcher creates a MessageFetcher backed by the user's
// linked mail account
func NewAccountFetcher(
	userRepo authrepo.UserRepository,
	gmailProvider maildomain.MailProvider,
	imapService *imap.IMAPService,
	encryptionKey string,
) MessageFetcher {
	return &accountFetcher{
		userRepo:      userRepo,
		gmailProvider: gmailProvider,
		imapService:   imapService,
		encryptionKey: encryptionKey,
	}
}

func (f *accountFetcher) Fetch(ctx context.Context, userID string, opts maildomain.FetchOptions) ([]*maildomain.Message, error) {
	user, err := f.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrNoMailAccount
	}

	switch {
	case user.AccessToken != "" && f.gmailProvider != nil:
		onRefresh := func(token *oauth2.Token) error {
			user.AccessToken = token.AccessToken
			if token.RefreshToken != "" {
				user.RefreshToken = token.RefreshToken
			}
			user.TokenExpiry = token.Expiry
			user.UpdatedAt = time.Now()
			if err := f.userRepo.Update(user); err != nil {
				log.Printf("[MailFetcher] Failed to persist refreshed token for user %s: %v", userID, err)
				return err
			}
			return nil
		}
		return f.gmailProvider.FetchMessages(ctx, user.AccessToken, user.RefreshToken, opts, onRefresh)

	case user.ImapServer != "" && f.imapService != nil:
		password, err := crypto.Decrypt(user.ImapPassword, f.encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt imap password: %w", err)
		}
		return f.imapService.FetchMessages(ctx, user.ImapServer, user.ImapPort, user.Email, password, opts)

	default:
		return nil, ErrNoMailAccount
	}
}
