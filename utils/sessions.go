package utils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Admin sessions are opaque UUID tokens carried in a cookie. Redis is
// preferred so sessions survive restarts and work across instances; on any
// Redis error the store falls through to process memory.

const sessionKeyPrefix = "session:admin:"

type sessionEntry struct {
	username  string
	expiresAt time.Time
}

var (
	sessionStore   = map[string]sessionEntry{}
	sessionStoreMu sync.Mutex
)

// NewSession creates a session for the given username and returns its token.
func NewSession(username string, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token := uuid.NewString()

	if rc := Redis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, sessionKeyPrefix+token, username, ttl).Err(); err == nil {
			return token
		}
	}

	sessionStoreMu.Lock()
	sessionStore[token] = sessionEntry{username: username, expiresAt: time.Now().Add(ttl)}
	sessionStoreMu.Unlock()
	return token
}

// SessionUsername resolves a session token to the username it was issued
// for. Unknown or expired tokens report ok=false.
func SessionUsername(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	if rc := Redis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if username, err := rc.Get(ctx, sessionKeyPrefix+token).Result(); err == nil {
			return username, true
		}
	}

	sessionStoreMu.Lock()
	defer sessionStoreMu.Unlock()
	entry, ok := sessionStore[token]
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		delete(sessionStore, token)
		return "", false
	}
	return entry.username, true
}

// DeleteSession removes a session. Deleting a token that does not exist is
// a no-op, which makes logout safe to call without a live session.
func DeleteSession(token string) {
	if token == "" {
		return
	}

	if rc := Redis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rc.Del(ctx, sessionKeyPrefix+token).Err()
	}

	sessionStoreMu.Lock()
	delete(sessionStore, token)
	sessionStoreMu.Unlock()
}
