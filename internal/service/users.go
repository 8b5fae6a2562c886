package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Victorious-hub/Open-Graph/internal/auth"
	"github.com/Victorious-hub/Open-Graph/internal/config"
	"github.com/Victorious-hub/Open-Graph/internal/db"
)

const passwordResetTTL = 24 * time.Hour

type Users struct {
	db         *gorm.DB
	tokens     *auth.Manager
	baseURL    string
	bcryptCost int
	logger     *zap.SugaredLogger
	now        func() time.Time
}

func NewUsers(db *gorm.DB, tokens *auth.Manager, cfg *config.Config, l *zap.SugaredLogger) *Users {
	return &Users{
		db:         db,
		tokens:     tokens,
		baseURL:    strings.TrimRight(cfg.PublicBaseURL, "/"),
		bcryptCost: bcrypt.DefaultCost,
		logger:     l,
		now:        time.Now,
	}
}

func (s *Users) Register(ctx context.Context, email, pass string) (*db.User, error) {
	email = normalizeEmail(email)

	var count int64
	if res := s.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", email).Count(&count); res.Error != nil {
		return nil, errors.Wrap(res.Error, "check user exists")
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := s.bcryptGen(pass)
	if err != nil {
		return nil, errors.Wrap(err, "bcryptGen")
	}
	user := db.User{
		Email:    email,
		Password: hash,
		IsActive: true,
	}
	if res := s.db.WithContext(ctx).Create(&user); res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, errors.Wrap(res.Error, "create user")
	}

	s.logger.Infow("user registered", "id", user.ID)
	return &user, nil
}

func (s *Users) Login(ctx context.Context, email, pass string) (*auth.TokenPair, error) {
	user := db.User{}
	res := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrLoginUserNotFound
		}
		return nil, errors.Wrap(res.Error, "get user")
	}
	if !user.IsActive {
		return nil, ErrLoginUserNotFound
	}

	if err := s.bcryptCheck(user.Password, pass); err != nil {
		return nil, ErrLoginPasswordDoesNotMatch
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "issue tokens")
	}
	return pair, nil
}

func (s *Users) Refresh(refreshToken string) (string, error) {
	return s.tokens.Refresh(refreshToken)
}

// Authenticate resolves an access token to an active user.
func (s *Users) Authenticate(ctx context.Context, accessToken string) (*db.User, error) {
	userID, err := s.tokens.Verify(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user := db.User{}
	res := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, errors.Wrap(res.Error, "get user")
	}
	return &user, nil
}

func (s *Users) ChangePassword(ctx context.Context, userID uint64, oldPass, newPass string) error {
	user := db.User{}
	if res := s.db.WithContext(ctx).First(&user, userID); res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(res.Error, "get user")
	}

	if err := s.bcryptCheck(user.Password, oldPass); err != nil {
		return ErrPasswordNotMatch
	}

	return s.setPassword(s.db.WithContext(ctx), userID, newPass)
}

// RequestPasswordReset stores a reset token for the calling user. email must
// belong to an existing account.
func (s *Users) RequestPasswordReset(ctx context.Context, userID uint64, email string) (*db.PasswordReset, error) {
	var count int64
	res := s.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", normalizeEmail(email)).Count(&count)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "check user exists")
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	token := uuid.New().String()
	reset := db.PasswordReset{
		UserID:    userID,
		Token:     token,
		ResetURL:  fmt.Sprintf("%s/api/v1/users/password-reset-new/%s", s.baseURL, token),
		ExpiresAt: s.now().Add(passwordResetTTL),
	}
	if res := s.db.WithContext(ctx).Create(&reset); res.Error != nil {
		return nil, errors.Wrap(res.Error, "create password reset")
	}

	s.logger.Infow("password reset requested", "user_id", userID)
	return &reset, nil
}

// SetNewPassword consumes a reset token issued to userID.
func (s *Users) SetNewPassword(ctx context.Context, userID uint64, token, pass string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reset := db.PasswordReset{}
		res := tx.Where("token = ? AND user_id = ?", token, userID).First(&reset)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return errors.Wrap(res.Error, "get password reset")
		}
		if !reset.ExpiresAt.After(s.now()) {
			return ErrResetLinkExpired
		}

		if err := s.setPassword(tx, userID, pass); err != nil {
			return err
		}
		if res := tx.Delete(&reset); res.Error != nil {
			return errors.Wrap(res.Error, "delete password reset")
		}
		return nil
	})
}

func (s *Users) setPassword(tx *gorm.DB, userID uint64, pass string) error {
	hash, err := s.bcryptGen(pass)
	if err != nil {
		return errors.Wrap(err, "bcryptGen")
	}
	res := tx.Model(&db.User{}).Where("id = ?", userID).Update("password", hash)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update password")
	}
	return nil
}

func (s *Users) bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), s.bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (s *Users) bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
