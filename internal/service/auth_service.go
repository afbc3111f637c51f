package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/apperr"
	"github.com/d60-Lab/unmask/pkg/mailer"
)

const (
	draftKeyPrefix = "signup:draft:"
	draftTTL       = 30 * time.Minute
)

// AuthService 多步注册向导 + 登录。
// 向导草稿存 redis，以随机 token 为键，不在进程内保留任何状态。
type AuthService interface {
	StartSignup(ctx context.Context, email, password string) (draftToken string, err error)
	SetProfile(ctx context.Context, draftToken, username string) error
	Verify(ctx context.Context, draftToken, code string) (accessToken string, err error)
	SignIn(ctx context.Context, email, password string) (accessToken string, err error)
}

type authService struct {
	users     repository.UserRepository
	rdb       *redis.Client
	mail      mailer.Mailer
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users repository.UserRepository, rdb *redis.Client, mail mailer.Mailer, jwtSecret string, jwtTTL time.Duration) AuthService {
	if jwtTTL <= 0 {
		jwtTTL = 24 * time.Hour
	}
	return &authService{users: users, rdb: rdb, mail: mail, jwtSecret: []byte(jwtSecret), jwtTTL: jwtTTL}
}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *authService) StartSignup(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return "", apperr.Invalid("Invalid fields")
	}
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", apperr.Conflict("Email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	code, err := randomCode()
	if err != nil {
		return "", err
	}

	key := draftKeyPrefix + token
	if err := s.rdb.HSet(ctx, key, "email", email, "password", string(hash), "code", code).Err(); err != nil {
		return "", err
	}
	if err := s.rdb.Expire(ctx, key, draftTTL).Err(); err != nil {
		return "", err
	}
	if err := s.mail.Send(ctx, email, "Verify your Unmask account", "Your verification code is "+code); err != nil {
		return "", err
	}
	return token, nil
}

func (s *authService) SetProfile(ctx context.Context, draftToken, username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return apperr.Invalid("Invalid fields")
	}
	key := draftKeyPrefix + draftToken
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("Signup draft not found")
	}
	taken, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("Username already taken")
	}
	return s.rdb.HSet(ctx, key, "username", username).Err()
}

func (s *authService) Verify(ctx context.Context, draftToken, code string) (string, error) {
	key := draftKeyPrefix + draftToken
	draft, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return "", err
	}
	if len(draft) == 0 {
		return "", apperr.NotFound("Signup draft not found")
	}
	if draft["code"] != code {
		return "", apperr.Invalid("Invalid verification code")
	}
	if draft["username"] == "" {
		return "", apperr.Invalid("Invalid fields")
	}

	// 草稿存续期间可能出现重名/重邮箱，落库前再查一次
	if exists, err := s.users.EmailExists(ctx, draft["email"]); err != nil {
		return "", err
	} else if exists {
		return "", apperr.Conflict("Email already in use")
	}
	if taken, err := s.users.UsernameExists(ctx, draft["username"]); err != nil {
		return "", err
	} else if taken {
		return "", apperr.Conflict("Username already taken")
	}

	u := &model.User{
		ID:       uuid.New().String(),
		Username: draft["username"],
		Email:    draft["email"],
		Password: draft["password"],
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}
	_ = s.rdb.Del(ctx, key).Err()
	return s.issueToken(u.ID)
}

func (s *authService) SignIn(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.Unauthorized("Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", apperr.Unauthorized("Invalid email or password")
	}
	return s.issueToken(u.ID)
}

func (s *authService) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
