package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inmobiliaria-backend/internal/models"
	"inmobiliaria-backend/internal/store"

	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

type LocalOptions struct {
	Secret  []byte
	TTL     time.Duration
	Allow   AllowList
	Revoker Revoker
	Now     func() time.Time
}

// LocalProvider bcrypt şifre kontrolü + HS256 JWT.
type LocalProvider struct {
	listeners
	users   UserStore
	secret  []byte
	ttl     time.Duration
	allow   AllowList
	revoker Revoker
	now     func() time.Time
}

func NewLocalProvider(users UserStore, opts LocalOptions) *LocalProvider {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Revoker == nil {
		opts.Revoker = NewMemoryRevoker()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &LocalProvider{
		users:   users,
		secret:  opts.Secret,
		ttl:     opts.TTL,
		allow:   opts.Allow,
		revoker: opts.Revoker,
		now:     opts.Now,
	}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// Şifre doğru olsa da allow-list dışı hesap panele giremez
	if !p.allow.Allows(u.Email) {
		return nil, ErrNotAuthorized
	}

	sess, err := p.issue(u)
	if err != nil {
		return nil, err
	}
	p.emit(Event{Type: EventSignedIn, User: &sess.User})
	return sess, nil
}

func (p *LocalProvider) CurrentUser(ctx context.Context, token string) (*User, error) {
	claims, err := p.claims(ctx, token)
	if err != nil || claims == nil {
		return nil, err
	}
	u := userFromClaims(claims)
	return &u, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	claims, err := ParseToken(p.secret, token)
	if err != nil {
		// Geçersiz veya süresi dolmuş token zaten kullanılamaz
		return nil
	}
	if err := p.revoker.Revoke(ctx, token, claims.ExpiresAt.Sub(p.now())); err != nil {
		return err
	}
	u := userFromClaims(claims)
	p.emit(Event{Type: EventSignedOut, User: &u})
	return nil
}

func (p *LocalProvider) Refresh(ctx context.Context, token string) (*Session, error) {
	claims, err := p.claims(ctx, token)
	if err != nil {
		return nil, err
	}
	if claims == nil {
		return nil, ErrNotAuthorized
	}

	u, err := p.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	sess, err := p.issue(u)
	if err != nil {
		return nil, err
	}
	if err := p.revoker.Revoke(ctx, token, claims.ExpiresAt.Sub(p.now())); err != nil {
		return nil, err
	}
	p.emit(Event{Type: EventRefreshed, User: &sess.User})
	return sess, nil
}

// claims geçerli oturum yoksa (nil, nil) döner.
func (p *LocalProvider) claims(ctx context.Context, token string) (*JWTCustomClaims, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := ParseToken(p.secret, token)
	if err != nil {
		return nil, nil
	}
	revoked, err := p.revoker.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked || !p.allow.Allows(claims.Email) {
		return nil, nil
	}
	return claims, nil
}

func (p *LocalProvider) issue(u *models.AdminUser) (*Session, error) {
	token, exp, err := GenerateToken(p.secret, u, p.ttl, p.now())
	if err != nil {
		return nil, fmt.Errorf("token oluşturulamadı: %w", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: exp,
		User:      User{ID: strconv.FormatUint(uint64(u.ID), 10), Email: u.Email, Name: u.Name},
	}, nil
}

func userFromClaims(c *JWTCustomClaims) User {
	return User{ID: strconv.FormatUint(uint64(c.UserID), 10), Email: c.Email, Name: c.Name}
}
