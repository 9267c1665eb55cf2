package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inkleaf/fiction-api/internal/domain/account"
	"github.com/inkleaf/fiction-api/internal/domain/ledger"
)

// Accounts is the slice of account storage the auth service needs
type Accounts interface {
	GetRegisteredByEmail(ctx context.Context, email string) (*account.Account, error)
	Resolve(ctx context.Context, id uuid.UUID) (*account.Account, account.Partition, error)
	CreateRegistered(ctx context.Context, id uuid.UUID, email string, credits int) error
	CreateGuest(ctx context.Context, id uuid.UUID, credits int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TokenIssuer mints session tokens
type TokenIssuer interface {
	GenerateSessionToken(accountID uuid.UUID, partition string) (string, error)
	SessionTTL() time.Duration
}

// Mailer queues the transactional emails the auth flows send
type Mailer interface {
	SendMagicLink(to, code, magicURL string)
	SendAccountDeletionCode(to, code string)
	SendWelcome(to, libraryURL string)
}

// Service implements passwordless sign-in, guest accounts and the
// account-deletion flow.
type Service struct {
	accounts    Accounts
	otp         OTPStore
	tokens      TokenIssuer
	mailer      Mailer
	frontendURL string
}

// NewService creates auth service
func NewService(accounts Accounts, otp OTPStore, tokens TokenIssuer, mailer Mailer, frontendURL string) *Service {
	return &Service{
		accounts:    accounts,
		otp:         otp,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// RequestMagicLink generates a sign-in code and emails it. It succeeds for
// unknown addresses too; the account is created at verification time.
func (s *Service) RequestMagicLink(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate sign-in code: %w", err)
	}
	if err := s.otp.Set(ctx, PurposeMagicLink, email, code); err != nil {
		return fmt.Errorf("store sign-in code: %w", err)
	}

	magicURL := fmt.Sprintf("%s/auth/verify?email=%s&code=%s",
		s.frontendURL, url.QueryEscape(email), code)
	s.mailer.SendMagicLink(email, code, magicURL)
	return nil
}

// Verify exchanges a sign-in code for a session. First-time addresses get a
// registered account with the signup bonus.
func (s *Service) Verify(ctx context.Context, email, code string) (*SessionResponse, error) {
	email = normalizeEmail(email)

	if err := s.consumeCode(ctx, PurposeMagicLink, email, code); err != nil {
		return nil, err
	}

	acct, err := s.accounts.GetRegisteredByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	newReader := acct == nil
	if newReader {
		id := uuid.New()
		if err := s.accounts.CreateRegistered(ctx, id, email, ledger.SignupBonusCredits); err != nil {
			return nil, err
		}
		acct, err = s.accounts.GetRegisteredByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if acct == nil {
			return nil, fmt.Errorf("registered account missing after create")
		}
		s.mailer.SendWelcome(email, s.frontendURL+"/library")
	}

	token, err := s.tokens.GenerateSessionToken(acct.ID, string(account.PartitionRegistered))
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &SessionResponse{
		User: User{
			AccountID: acct.ID.String(),
			Email:     email,
			NewReader: newReader,
		},
		Session: Session{
			Token:     token,
			ExpiresIn: int64(s.tokens.SessionTTL().Seconds()),
		},
	}, nil
}

// Me returns the authenticated account's profile
func (s *Service) Me(ctx context.Context, accountID uuid.UUID) (*MeResponse, error) {
	acct, partition, err := s.accounts.Resolve(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	paid := []string(acct.UnlockedChapters)
	if paid == nil {
		paid = []string{}
	}
	return &MeResponse{
		User: User{
			AccountID: acct.ID.String(),
			Email:     acct.Email.String,
		},
		Profile: Profile{
			Partition:    string(partition),
			Credits:      acct.Credits,
			PaidChapters: paid,
		},
	}, nil
}

// CreateGuest mints an anonymous account. Guests start with zero credits;
// the signup bonus is reserved for registration.
func (s *Service) CreateGuest(ctx context.Context) (*GuestResponse, error) {
	id := uuid.New()
	if err := s.accounts.CreateGuest(ctx, id, 0); err != nil {
		return nil, err
	}
	return &GuestResponse{GuestID: id.String()}, nil
}

// DeleteAccount removes the authenticated account immediately
func (s *Service) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	err := s.accounts.Delete(ctx, accountID)
	if errors.Is(err, account.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

// RequestDeleteCode emails an account-deletion confirmation code. Unknown
// addresses are not revealed: the call succeeds without sending anything.
func (s *Service) RequestDeleteCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	acct, err := s.accounts.GetRegisteredByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acct == nil {
		log.Info().Str("email", email).Msg("deletion code requested for unknown address")
		return nil
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate deletion code: %w", err)
	}
	if err := s.otp.Set(ctx, PurposeDelete, email, code); err != nil {
		return fmt.Errorf("store deletion code: %w", err)
	}

	s.mailer.SendAccountDeletionCode(email, code)
	return nil
}

// ConfirmDelete verifies the emailed code and removes the account
func (s *Service) ConfirmDelete(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)

	if err := s.consumeCode(ctx, PurposeDelete, email, code); err != nil {
		return err
	}

	acct, err := s.accounts.GetRegisteredByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acct == nil {
		return ErrAccountNotFound
	}
	return s.DeleteAccount(ctx, acct.ID)
}

// consumeCode checks the submitted code and burns it on success
func (s *Service) consumeCode(ctx context.Context, purpose, email, code string) error {
	stored, err := s.otp.Get(ctx, purpose, email)
	if err != nil {
		return fmt.Errorf("read stored code: %w", err)
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	if err := s.otp.Delete(ctx, purpose, email); err != nil {
		log.Warn().Err(err).Str("purpose", purpose).Msg("failed to delete consumed code")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
