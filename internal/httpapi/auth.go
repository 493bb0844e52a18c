package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"fuelsales/internal/domain"
	"fuelsales/internal/store"
)

const (
	RoleAdmin     = "admin"
	RoleAttendant = "attendant"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
)

type UserFinder interface {
	FindUserByLogin(ctx context.Context, login string) (*domain.UserAccount, error)
}

type AuthManager struct {
	secret   []byte
	tokenTTL time.Duration
	users    UserFinder
}

type staffClaims struct {
	jwtlib.RegisteredClaims
	UserID   int64  `json:"uid"`
	Role     string `json:"role"`
	BranchID string `json:"branch"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, users UserFinder) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &AuthManager{secret: []byte(secret), tokenTTL: tokenTTL, users: users}
}

// Login checks the password and issues a token bound to the account's branch.
// Unknown logins and wrong passwords get the same error.
func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || strings.TrimSpace(req.Password) == "" {
		return domain.LoginResponse{}, ErrInvalidCredentials
	}

	user, err := a.users.FindUserByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return domain.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if !verifyPassword(user.PasswordHash, req.Password) {
		return domain.LoginResponse{}, ErrInvalidCredentials
	}
	if !user.Active {
		return domain.LoginResponse{}, ErrInactiveAccount
	}

	token, err := a.sign(domain.Actor{UserID: user.ID, Login: user.Login, Role: user.Role, BranchID: user.BranchID}, time.Now().UTC().Add(a.tokenTTL))
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		Token:  token,
		Role:   user.Role,
		UserID: user.ID,
		Branch: user.BranchID,
	}, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &staffClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	return domain.Actor{UserID: claims.UserID, Login: sub, Role: claims.Role, BranchID: claims.BranchID}, nil
}

func (a *AuthManager) sign(actor domain.Actor, expiresAt time.Time) (string, error) {
	claims := staffClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   actor.Login,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "fuelsales",
		},
		UserID:   actor.UserID,
		Role:     actor.Role,
		BranchID: actor.BranchID,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// CanAccessBranch reports whether actor may read or write branchID. Admins
// see every branch; everyone else only their own.
func CanAccessBranch(actor domain.Actor, branchID string) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return actor.BranchID != "" && actor.BranchID == branchID
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
