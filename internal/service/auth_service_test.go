package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/unmask/internal/model"
	"github.com/d60-Lab/unmask/internal/repository"
	"github.com/d60-Lab/unmask/pkg/apperr"
)

// captureMailer 把最后一封邮件留在内存里供断言
type captureMailer struct {
	to, subject, body string
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return nil
}

const testJWTSecret = "test-secret"

func newAuthService(t *testing.T, db *gorm.DB) (AuthService, *miniredis.Miniredis, *captureMailer) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mail := &captureMailer{}
	svc := NewAuthService(repository.NewUserRepository(db), rdb, mail, testJWTSecret, time.Hour)
	return svc, mr, mail
}

func mailedCode(t *testing.T, mail *captureMailer) string {
	t.Helper()
	i := strings.LastIndex(mail.body, " ")
	require.Greater(t, i, 0)
	code := mail.body[i+1:]
	require.Len(t, code, 6)
	return code
}

func subjectOf(t *testing.T, token string) string {
	t.Helper()
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	return claims.Subject
}

func TestSignupFlow(t *testing.T) {
	db := setupTestDB(t)
	svc, mr, mail := newAuthService(t, db)
	ctx := context.Background()

	token, err := svc.StartSignup(ctx, "  Alice@Example.com ", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "alice@example.com", mail.to)

	require.NoError(t, svc.SetProfile(ctx, token, "alice"))

	access, err := svc.Verify(ctx, token, mailedCode(t, mail))
	require.NoError(t, err)

	var u model.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&u).Error)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, u.ID, subjectOf(t, access))

	// 注册完成后草稿清除
	require.False(t, mr.Exists("signup:draft:"+token))

	access, err = svc.SignIn(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, u.ID, subjectOf(t, access))
}

func TestSignupWrongCode(t *testing.T) {
	db := setupTestDB(t)
	svc, _, mail := newAuthService(t, db)
	ctx := context.Background()

	token, err := svc.StartSignup(ctx, "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.SetProfile(ctx, token, "bob"))

	code := mailedCode(t, mail)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = svc.Verify(ctx, token, wrong)
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	// 验证失败不建用户
	var cnt int64
	require.NoError(t, db.Model(&model.User{}).Count(&cnt).Error)
	require.Zero(t, cnt)
}

func TestSignupValidation(t *testing.T) {
	db := setupTestDB(t)
	svc, _, mail := newAuthService(t, db)
	ctx := context.Background()

	_, err := svc.StartSignup(ctx, "x@example.com", "short")
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	require.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.SetProfile(ctx, "no-such-draft", "carol")))

	token, err := svc.StartSignup(ctx, "carol@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(svc.SetProfile(ctx, token, "ab")))

	// 未设置用户名就验证
	_, err = svc.Verify(ctx, token, mailedCode(t, mail))
	require.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestSignupDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc, _, mail := newAuthService(t, db)
	ctx := context.Background()

	token, err := svc.StartSignup(ctx, "dave@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.SetProfile(ctx, token, "dave"))
	_, err = svc.Verify(ctx, token, mailedCode(t, mail))
	require.NoError(t, err)

	_, err = svc.StartSignup(ctx, "dave@example.com", "hunter2hunter2")
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	token, err = svc.StartSignup(ctx, "dave2@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, apperr.KindConflict, apperr.KindOf(svc.SetProfile(ctx, token, "dave")))
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc, _, mail := newAuthService(t, db)
	ctx := context.Background()

	token, err := svc.StartSignup(ctx, "eve@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.SetProfile(ctx, token, "eve"))
	_, err = svc.Verify(ctx, token, mailedCode(t, mail))
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "eve@example.com", "wrong-password")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	_, err = svc.SignIn(ctx, "nobody@example.com", "hunter2hunter2")
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
