package usecases

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"hilalbot/internal/entities"
	"hilalbot/internal/infrastructure"
	"hilalbot/internal/repository"
)

// ErrInvalidCredentials covers every login failure so the API never leaks
// whether the username, password or code was the wrong part.
var ErrInvalidCredentials = errors.New("invalid credentials")

const loginCodeTTL = 5 * time.Minute

type AuthUsecase struct {
	adminRepo *repository.AdminRepository
	codes     *infrastructure.CodeStore
	cfg       *infrastructure.Config
	jwtSecret []byte
}

func NewAuthUsecase(repo *repository.AdminRepository, codes *infrastructure.CodeStore, cfg *infrastructure.Config) *AuthUsecase {
	return &AuthUsecase{
		adminRepo: repo,
		codes:     codes,
		cfg:       cfg,
		jwtSecret: []byte(cfg.JWTSecret),
	}
}

// Login verifies a username/password pair and issues a 24h JWT.
func (uc *AuthUsecase) Login(username, password string) (string, error) {
	account, err := uc.adminRepo.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return uc.issueToken(strconv.Itoa(account.ID), account.Username, account.Role)
}

// GenerateLoginCode mints a six digit one-time code bound to an admin's
// Telegram id, valid for five minutes.
func (uc *AuthUsecase) GenerateLoginCode(telegramID int64) (string, error) {
	if !uc.cfg.IsAdmin(strconv.FormatInt(telegramID, 10)) {
		return "", ErrInvalidCredentials
	}

	uc.codes.PruneExpired()

	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	if err := uc.codes.Put(code, telegramID, loginCodeTTL); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// RedeemLoginCode exchanges a one-time code for a JWT. The code is consumed
// even when redemption ultimately fails, so it can never be retried.
func (uc *AuthUsecase) RedeemLoginCode(code string) (string, error) {
	telegramID, err := uc.codes.Take(code)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	id := strconv.FormatInt(telegramID, 10)
	if !uc.cfg.IsAdmin(id) {
		return "", ErrInvalidCredentials
	}

	return uc.issueToken(id, "telegram:"+id, "admin")
}

func (uc *AuthUsecase) issueToken(subject, username, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      subject,
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})

	signed, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, nil
}

// EnsureAdmin seeds the default panel account if none exists (called on
// startup).
func (uc *AuthUsecase) EnsureAdmin(username, password string) error {
	account, err := uc.adminRepo.GetByUsername(username)
	if err != nil {
		return err
	}
	if account == nil {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return uc.adminRepo.Create(&entities.AdminAccount{
			Username:     username,
			PasswordHash: string(hashed),
			Role:         "admin",
		})
	}
	return nil
}
