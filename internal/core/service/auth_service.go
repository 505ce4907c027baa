package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
	"github.com/kompu/storefront/internal/core/token"
)

const (
	opRegister      = "auth.register"
	opLogin         = "auth.login"
	opResetPassword = "auth.reset_password"

	msgFieldsRequired = "Todos los campos deben ser completados"
	msgResetLink      = "El enlace de restablecimiento no es válido"
)

// MailSettings configures the templated e-mails sent by AuthService.
type MailSettings struct {
	ServiceID       string
	PublicKey       string
	WelcomeTemplate string
	ResetTemplate   string
	SiteURL         string
	LogoURL         string
}

// AuthService implements registration, login and password reset.
type AuthService struct {
	users    ports.UserRepository
	tokens   ports.TokenStore
	codec    *token.Codec
	hasher   PasswordHasher
	queue    ports.NotificationQueue
	notifier ports.Notifier
	mail     MailSettings
	txn      *Txn
	rec      ports.Recorder
	clock    func() time.Time
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenStore,
	codec *token.Codec,
	hasher PasswordHasher,
	queue ports.NotificationQueue,
	notifier ports.Notifier,
	mail MailSettings,
	txn *Txn,
	rec ports.Recorder,
	log zerolog.Logger,
) *AuthService {
	if hasher == nil {
		hasher = base64Passwords{}
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		codec:    codec,
		hasher:   hasher,
		queue:    queue,
		notifier: notifier,
		mail:     mail,
		txn:      txn,
		rec:      orNop(rec),
		clock:    time.Now,
		log:      log,
	}
}

// Register validates the form, appends a new user and starts a session.
// The welcome e-mail is queued and never affects the result.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	password := strings.TrimSpace(in.Password)
	confirm := strings.TrimSpace(in.ConfirmPassword)
	phone := strings.TrimSpace(in.Phone)
	address := strings.TrimSpace(in.Address)

	if name == "" || email == "" || password == "" || confirm == "" || phone == "" || address == "" {
		return nil, domain.Invalid(msgFieldsRequired)
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, domain.Invalid(msgPasswordsDiffer)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	var created domain.User
	err := s.txn.Do(func() error {
		users, ok, err := s.users.LoadAll(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return skip(s.rec, opRegister, domain.SkipNoUserCollection)
		}
		if domain.FindUserByEmail(users, email) >= 0 {
			return domain.ErrEmailTaken
		}

		hashed, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("register: hash password: %w", err)
		}
		created = domain.User{
			ID:       domain.NextUserID(users),
			Name:     name,
			Email:    strings.ToLower(email),
			Password: hashed,
			Phone:    phone,
			Address:  address,
			Role:     domain.RoleUser,
			State:    domain.StateEnabled,
		}
		created.Normalize()

		return s.users.SaveAll(ctx, append(users, created))
	})
	if err != nil {
		return nil, err
	}

	tok, err := s.startSession(ctx, created)
	if err != nil {
		return nil, err
	}

	if s.queue != nil {
		s.queue.Enqueue(ports.Notification{
			ServiceID:  s.mail.ServiceID,
			TemplateID: s.mail.WelcomeTemplate,
			PublicKey:  s.mail.PublicKey,
			Params: map[string]string{
				"email":   created.Email,
				"nombre":  created.Name,
				"urlWeb":  s.mail.SiteURL,
				"urlLogo": s.mail.LogoURL,
			},
		})
	}

	s.log.Info().Int("user_id", created.ID).Msg("user registered")
	return &ports.AuthResult{Token: tok, User: created}, nil
}

// Login checks credentials and stores a fresh session token as active.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	users, ok, err := s.users.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, skip(s.rec, opLogin, domain.SkipNoUserCollection)
	}

	idx := domain.FindUserByEmail(users, email)
	if idx < 0 || !s.hasher.Verify(users[idx].Password, password) {
		return nil, domain.ErrInvalidCredentials
	}
	user := users[idx]
	if !user.Enabled() {
		return nil, domain.ErrUserDisabled
	}

	tok, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("user_id", user.ID).Msg("user logged in")
	return &ports.AuthResult{Token: tok, User: user}, nil
}

func (s *AuthService) startSession(ctx context.Context, u domain.User) (string, error) {
	tok := s.codec.Session(u.ID, u.Name, u.Role, s.clock())
	if err := s.tokens.SetActive(ctx, tok); err != nil {
		return "", fmt.Errorf("store session token: %w", err)
	}
	return tok, nil
}

// Logout removes the active token.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

// RequestPasswordReset mails a reset link. The mail is sent synchronously
// because its failure is reported to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}
	if s.notifier == nil {
		return fmt.Errorf("%w: no notifier configured", domain.ErrNotificationFailed)
	}

	tok := s.codec.Reset(email, s.clock())
	link := strings.TrimRight(s.mail.SiteURL, "/") + "/restablecimiento?token=" + url.QueryEscape(tok)

	err := s.notifier.Send(ctx, ports.Notification{
		ServiceID:  s.mail.ServiceID,
		TemplateID: s.mail.ResetTemplate,
		PublicKey:  s.mail.PublicKey,
		Params: map[string]string{
			"email":               email,
			"urlRestablecimiento": link,
			"urlWeb":              s.mail.SiteURL,
			"urlLogo":             s.mail.LogoURL,
		},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("reset e-mail failed")
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}
	return nil
}

// ResetPassword sets a new password for the e-mail bound to tok.
func (s *AuthService) ResetPassword(ctx context.Context, tok, password, confirm string) error {
	claims, err := token.Decode(tok)
	if err != nil || claims.Email == "" {
		return domain.Invalid(msgResetLink)
	}
	if !claims.Valid(s.clock()) {
		return domain.ErrTokenExpired
	}

	password = strings.TrimSpace(password)
	if password != strings.TrimSpace(confirm) {
		return domain.Invalid(msgPasswordsDiffer)
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	return s.txn.Do(func() error {
		users, ok, err := s.users.LoadAll(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return skip(s.rec, opResetPassword, domain.SkipNoUserCollection)
		}
		idx := domain.FindUserByEmail(users, claims.Email)
		if idx < 0 {
			return skip(s.rec, opResetPassword, domain.SkipUserNotFound)
		}

		hashed, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("reset password: hash: %w", err)
		}
		users[idx].Password = hashed
		if err := s.users.SaveAll(ctx, users); err != nil {
			return err
		}
		s.log.Info().Int("user_id", users[idx].ID).Msg("password reset")
		return nil
	})
}
