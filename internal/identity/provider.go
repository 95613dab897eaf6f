// Package identity admin kimliğini sağlayan servisleri tek bir arayüz arkasında toplar.
package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthorized      = errors.New("identity is not authorized for admin access")
	ErrUnsupported        = errors.New("operation not supported by this identity provider")
	ErrUnavailable        = errors.New("identity provider unavailable")
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
	EventRefreshed EventType = "refreshed"
)

type Event struct {
	Type EventType
	User *User
}

// Provider: CurrentUser oturum yoksa (nil, nil) döner; hata sadece altyapı sorunudur.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	CurrentUser(ctx context.Context, token string) (*User, error)
	SignOut(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (*Session, error)
	OnAuthChange(fn func(Event)) (cancel func())
}

// AllowList boşsa tüm giriş yapmış kimlikler kabul edilir.
type AllowList struct {
	emails map[string]struct{}
}

func NewAllowList(emails []string) AllowList {
	m := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = NormalizeEmail(e); e != "" {
			m[e] = struct{}{}
		}
	}
	return AllowList{emails: m}
}

func (a AllowList) Allows(email string) bool {
	if len(a.emails) == 0 {
		return true
	}
	_, ok := a.emails[NormalizeEmail(email)]
	return ok
}

func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// listeners OnAuthChange aboneleri; sağlayıcılara gömülür.
type listeners struct {
	mu   sync.Mutex
	fns  map[int]func(Event)
	next int
}

func (l *listeners) OnAuthChange(fn func(Event)) func() {
	l.mu.Lock()
	if l.fns == nil {
		l.fns = map[int]func(Event){}
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

func (l *listeners) emit(ev Event) {
	l.mu.Lock()
	fns := make([]func(Event), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
