package service

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
	"net/http"
	"strings"
	"time"

	"github.com/doskvol-ltd/doskvol/internal/config"
	"github.com/doskvol-ltd/doskvol/internal/model"
	"github.com/doskvol-ltd/doskvol/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TotpDescriptor carries everything a client needs to set up an
// authenticator app before enrollment is confirmed. Nothing is persisted
// until the submitted code verifies.
type TotpDescriptor struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QR     string `json:"qr"` // base64 encoded PNG
}

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		db: db,
	}
}

func totpOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// VerifyCode checks a submitted code against a secret at the current time,
// tolerating one step of clock skew in either direction.
func (auth *AuthService) VerifyCode(code string, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totpOpts())

	if err != nil {
		log.Warn().Err(err).Msg("Failed to validate TOTP code")
		return false
	}

	return ok
}

func (auth *AuthService) ValidateUsername(username string) error {
	if username == "" {
		return ErrInvalidUsername
	}

	if strings.Contains(username, ":") {
		return ErrInvalidUsername
	}

	return nil
}

// BeginEnrollment generates a fresh secret and provisioning material for a
// candidate username. The user row is only written by CompleteEnrollment.
func (auth *AuthService) BeginEnrollment(username string) (*TotpDescriptor, error) {
	if err := auth.ValidateUsername(username); err != nil {
		return nil, err
	}

	var count int64
	err := auth.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error

	if err != nil {
		log.Error().Err(err).Msg("Failed to check username")
		return nil, ErrServer
	}

	if count > 0 {
		return nil, ErrUsernameTaken
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      config.TotpIssuer,
		AccountName: username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})

	if err != nil {
		log.Error().Err(err).Msg("Failed to generate TOTP secret")
		return nil, ErrServer
	}

	img, err := key.Image(256, 256)

	if err != nil {
		log.Error().Err(err).Msg("Failed to render provisioning QR code")
		return nil, ErrServer
	}

	var buf bytes.Buffer

	if err := png.Encode(&buf, img); err != nil {
		log.Error().Err(err).Msg("Failed to encode provisioning QR code")
		return nil, ErrServer
	}

	return &TotpDescriptor{
		Secret: key.Secret(),
		URL:    key.URL(),
		QR:     base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// CompleteEnrollment verifies the submitted code against the secret from
// BeginEnrollment, persists the user and issues a session. Enrollment
// doubles as first login.
func (auth *AuthService) CompleteEnrollment(c *gin.Context, username string, secret string, code string) (*model.User, error) {
	if err := auth.ValidateUsername(username); err != nil {
		return nil, err
	}

	if !auth.VerifyCode(code, secret) {
		log.Info().Str("username", username).Msg("Invalid TOTP code during enrollment")
		return nil, ErrInvalidCode
	}

	user := model.User{
		Username:   username,
		TotpSecret: secret,
	}

	var count int64
	err := auth.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error

	if err != nil {
		log.Error().Err(err).Msg("Failed to check username")
		return nil, ErrServer
	}

	if count > 0 {
		return nil, ErrUsernameTaken
	}

	err = auth.db.Create(&user).Error

	if err != nil {
		// A concurrent registration may have claimed the username between
		// the check and the insert, the primary key keeps us honest.
		log.Warn().Err(err).Str("username", username).Msg("Failed to create user")
		return nil, ErrUsernameTaken
	}

	if err := auth.IssueSession(c, user.Username); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to create session for new user")
		return nil, ErrServer
	}

	log.Info().Str("username", username).Msg("Enrolled new user")
	return &user, nil
}

// Login validates a submitted code against the stored secret and issues a
// session. Unknown users and bad codes are indistinguishable to the caller.
func (auth *AuthService) Login(c *gin.Context, username string, code string) (*model.User, error) {
	var user model.User
	err := auth.db.Where("username = ?", username).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Info().Str("username", username).Msg("Login attempt for unknown user")
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		log.Error().Err(err).Msg("Failed to look up user")
		return nil, ErrServer
	}

	if !auth.VerifyCode(code, user.TotpSecret) {
		log.Info().Str("username", username).Msg("Invalid TOTP code")
		return nil, ErrInvalidCredentials
	}

	if err := auth.IssueSession(c, user.Username); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to create session")
		return nil, ErrServer
	}

	log.Info().Str("username", username).Msg("Logged in user")
	return &user, nil
}

// IssueSession generates a token, inserts the session row and sets the
// cookie. The cookie has no expiry, sessions live until explicit logout.
func (auth *AuthService) IssueSession(c *gin.Context, username string) error {
	token, err := utils.RandomString(utils.SessionTokenLength)

	if err != nil {
		return err
	}

	session := model.Session{
		UserID: username,
		Token:  token,
	}

	if err := auth.db.Create(&session).Error; err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(config.SessionCookieName, token, 0, "/", "", true, true)

	return nil
}

// ResolveSession computes the identity for the current request. A nil user
// with a nil error means anonymous.
func (auth *AuthService) ResolveSession(c *gin.Context) (*model.User, error) {
	token, err := c.Cookie(config.SessionCookieName)

	if err != nil || token == "" || token == config.DeletedCookieValue {
		return nil, nil
	}

	var session model.Session
	err = auth.db.Where("token = ?", token).First(&session).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Info().Msg("Invalid session token, clearing cookie")
		auth.clearSessionCookie(c)
		return nil, nil
	}

	if err != nil {
		log.Error().Err(err).Msg("Failed to look up session")
		return nil, ErrServer
	}

	var user model.User
	err = auth.db.Where("username = ?", session.UserID).First(&user).Error

	if err != nil {
		// A session pointing at a missing user is corrupt linked data.
		log.Error().Err(err).Str("userId", session.UserID).Msg("Session references missing user")
		return nil, ErrServer
	}

	log.Debug().Str("username", user.Username).Msg("Authenticated user")
	return &user, nil
}

// RevokeSession deletes the session row for the cookie's token and clears
// the cookie. Calling it without a cookie is a no-op signal, not a failure.
func (auth *AuthService) RevokeSession(c *gin.Context) error {
	token, err := c.Cookie(config.SessionCookieName)

	if err != nil {
		log.Info().Msg("No session cookie found when removing session")
		return ErrNoActiveSession
	}

	err = auth.db.Where("token = ?", token).Delete(&model.Session{}).Error

	if err != nil {
		log.Error().Err(err).Msg("Failed to delete session")
		return ErrServer
	}

	auth.clearSessionCookie(c)
	return nil
}

func (auth *AuthService) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(config.SessionCookieName, config.DeletedCookieValue, -1, "/", "", true, true)
}
