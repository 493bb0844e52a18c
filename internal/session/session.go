// Package session resolves the credential and branch the sales screen runs
// under, and records them at login.
package session

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"fuelsales/internal/cache"
	"fuelsales/internal/domain"
)

type Provider interface {
	Current(ctx context.Context) (domain.BranchSession, error)
}

// Static is a session fixed at startup, for example from the environment.
type Static domain.BranchSession

func (s Static) Current(context.Context) (domain.BranchSession, error) {
	return domain.BranchSession(s), nil
}

// Cached reads the session written by Login. Missing keys yield an empty
// field rather than an error so a signed-out user sees "Branch ID not found".
type Cached struct {
	Cache cache.SessionCache
}

func (c Cached) Current(ctx context.Context) (domain.BranchSession, error) {
	token, _, err := c.Cache.Get(ctx, cache.KeyUserToken)
	if err != nil {
		return domain.BranchSession{}, fmt.Errorf("read session token: %w", err)
	}
	branch, _, err := c.Cache.Get(ctx, cache.KeyBranch)
	if err != nil {
		return domain.BranchSession{}, fmt.Errorf("read session branch: %w", err)
	}
	return domain.BranchSession{Credential: token, BranchID: branch}, nil
}

type Authenticator interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
}

// Login exchanges credentials for a token and stores the token, branch, role
// and user id. Blank fields are rejected before any request is made.
func Login(ctx context.Context, auth Authenticator, store cache.SessionCache, login, password string, ttl time.Duration) (domain.LoginResponse, error) {
	login = strings.TrimSpace(login)
	password = strings.TrimSpace(password)

	var missing []string
	if login == "" {
		missing = append(missing, "login")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return domain.LoginResponse{}, &domain.ValidationError{MissingFields: missing}
	}

	resp, err := auth.Login(ctx, domain.LoginRequest{Login: login, Password: password})
	if err != nil {
		log.Printf("[session] login failed for %q: %v", login, err)
		return domain.LoginResponse{}, err
	}

	values := map[string]string{
		cache.KeyUserToken: resp.Token,
		cache.KeyBranch:    resp.Branch,
		cache.KeyRole:      resp.Role,
		cache.KeyUserID:    strconv.FormatInt(resp.UserID, 10),
	}
	for _, key := range cache.SessionKeys {
		if err := store.Set(ctx, key, values[key], ttl); err != nil {
			return domain.LoginResponse{}, fmt.Errorf("store session %s: %w", key, err)
		}
	}
	return resp, nil
}

func Logout(ctx context.Context, store cache.SessionCache) error {
	return store.Delete(ctx, cache.SessionKeys...)
}
