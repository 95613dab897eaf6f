package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type OIDCOptions struct {
	UserInfoURL string
	Timeout     time.Duration
	Allow       AllowList
	Revoker     Revoker
	// SignOut sonrası token'ın reddedileceği süre
	RevokeTTL time.Duration
}

// OIDCProvider token'ları dış sağlayıcının userinfo endpoint'i ile doğrular.
// Giriş ve yenileme sağlayıcının kendi arayüzünde yapılır.
type OIDCProvider struct {
	listeners
	userInfoURL string
	httpClient  *http.Client
	allow       AllowList
	revoker     Revoker
	revokeTTL   time.Duration
}

type userInfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewOIDCProvider(opts OIDCOptions) *OIDCProvider {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Revoker == nil {
		opts.Revoker = NewMemoryRevoker()
	}
	if opts.RevokeTTL <= 0 {
		opts.RevokeTTL = 24 * time.Hour
	}
	return &OIDCProvider{
		userInfoURL: opts.UserInfoURL,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		allow:       opts.Allow,
		revoker:     opts.Revoker,
		revokeTTL:   opts.RevokeTTL,
	}
}

func (p *OIDCProvider) SignIn(context.Context, string, string) (*Session, error) {
	return nil, ErrUnsupported
}

func (p *OIDCProvider) Refresh(context.Context, string) (*Session, error) {
	return nil, ErrUnsupported
}

func (p *OIDCProvider) CurrentUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}
	revoked, err := p.revoker.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}

	info, err := p.fetch(ctx, token)
	if err != nil || info == nil {
		return nil, err
	}
	if info.Email == "" || !p.allow.Allows(info.Email) {
		return nil, nil
	}
	return &User{ID: info.Sub, Email: NormalizeEmail(info.Email), Name: info.Name}, nil
}

func (p *OIDCProvider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	info, _ := p.fetch(ctx, token)
	if err := p.revoker.Revoke(ctx, token, p.revokeTTL); err != nil {
		return err
	}
	ev := Event{Type: EventSignedOut}
	if info != nil {
		ev.User = &User{ID: info.Sub, Email: NormalizeEmail(info.Email), Name: info.Name}
	}
	p.emit(ev)
	return nil
}

// fetch 401/403 durumunda (nil, nil) döner.
func (p *OIDCProvider) fetch(ctx context.Context, token string) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: userinfo status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", ErrUnavailable, err)
	}
	return &info, nil
}
