package service_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/doskvol-ltd/doskvol/internal/config"
	"github.com/doskvol-ltd/doskvol/internal/model"
	"github.com/doskvol-ltd/doskvol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"gotest.tools/v3/assert"
	"gorm.io/gorm"
)

func setupDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	databaseService := service.NewDatabaseService(service.DatabaseServiceConfig{
		DatabasePath: ":memory:",
	})

	err := databaseService.Init()
	assert.NilError(t, err)

	return databaseService.GetDatabase()
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest("POST", "/", nil)

	return c, recorder
}

func codeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()

	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	assert.NilError(t, err)

	return code
}

func enrollUser(t *testing.T, auth *service.AuthService, username string) string {
	t.Helper()

	descriptor, err := auth.BeginEnrollment(username)
	assert.NilError(t, err)

	c, _ := testContext(t)

	_, err = auth.CompleteEnrollment(c, username, descriptor.Secret, codeAt(t, descriptor.Secret, time.Now()))
	assert.NilError(t, err)

	return descriptor.Secret
}

func TestVerifyCodeWindow(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	descriptor, err := auth.BeginEnrollment("window")
	assert.NilError(t, err)

	now := time.Now()

	// Codes from the current and adjacent steps validate.
	assert.Assert(t, auth.VerifyCode(codeAt(t, descriptor.Secret, now), descriptor.Secret))
	assert.Assert(t, auth.VerifyCode(codeAt(t, descriptor.Secret, now.Add(-30*time.Second)), descriptor.Secret))

	// A code three steps away does not.
	assert.Assert(t, !auth.VerifyCode(codeAt(t, descriptor.Secret, now.Add(-3*30*time.Second)), descriptor.Secret))
}

func TestBeginEnrollment(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	descriptor, err := auth.BeginEnrollment("gm1")
	assert.NilError(t, err)
	assert.Assert(t, descriptor.Secret != "")
	assert.Assert(t, descriptor.URL != "")
	assert.Assert(t, descriptor.QR != "")

	// Nothing is persisted until the code is confirmed.
	var count int64
	err = db.Model(&model.User{}).Count(&count).Error
	assert.NilError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestBeginEnrollmentInvalidUsername(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	_, err := auth.BeginEnrollment("")
	assert.ErrorIs(t, err, service.ErrInvalidUsername)

	_, err = auth.BeginEnrollment("user:name")
	assert.ErrorIs(t, err, service.ErrInvalidUsername)
}

func TestCompleteEnrollment(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	descriptor, err := auth.BeginEnrollment("gm1")
	assert.NilError(t, err)

	// A wrong code persists nothing.
	c, _ := testContext(t)
	_, err = auth.CompleteEnrollment(c, "gm1", descriptor.Secret, "000000")
	assert.ErrorIs(t, err, service.ErrInvalidCode)

	var count int64
	err = db.Model(&model.User{}).Count(&count).Error
	assert.NilError(t, err)
	assert.Equal(t, int64(0), count)

	// A valid code creates the user and issues a session.
	c, recorder := testContext(t)
	user, err := auth.CompleteEnrollment(c, "gm1", descriptor.Secret, codeAt(t, descriptor.Secret, time.Now()))
	assert.NilError(t, err)
	assert.Equal(t, "gm1", user.Username)
	assert.Equal(t, descriptor.Secret, user.TotpSecret)

	cookies := recorder.Result().Cookies()
	assert.Equal(t, 1, len(cookies))
	assert.Equal(t, config.SessionCookieName, cookies[0].Name)
	assert.Assert(t, cookies[0].Value != "")
}

func TestCompleteEnrollmentUsernameTaken(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	secret := enrollUser(t, auth, "gm1")

	c, _ := testContext(t)
	_, err := auth.CompleteEnrollment(c, "gm1", secret, codeAt(t, secret, time.Now()))
	assert.ErrorIs(t, err, service.ErrUsernameTaken)

	// No duplicate row was created.
	var count int64
	err = db.Model(&model.User{}).Where("username = ?", "gm1").Count(&count).Error
	assert.NilError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLogin(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	secret := enrollUser(t, auth, "gm1")

	// Unknown user and bad code are indistinguishable.
	c, _ := testContext(t)
	_, err := auth.Login(c, "nobody", codeAt(t, secret, time.Now()))
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	c, recorder := testContext(t)
	_, err = auth.Login(c, "gm1", "000000")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, 0, len(recorder.Result().Cookies()))

	c, recorder = testContext(t)
	user, err := auth.Login(c, "gm1", codeAt(t, secret, time.Now()))
	assert.NilError(t, err)
	assert.Equal(t, "gm1", user.Username)

	cookies := recorder.Result().Cookies()
	assert.Equal(t, 1, len(cookies))
	assert.Equal(t, config.SessionCookieName, cookies[0].Name)
}

func TestSessionRoundTrip(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	enrollUser(t, auth, "gm1")

	c, recorder := testContext(t)
	err := auth.IssueSession(c, "gm1")
	assert.NilError(t, err)

	cookie := recorder.Result().Cookies()[0]
	assert.Equal(t, config.SessionCookieName, cookie.Name)
	assert.Equal(t, 25, len(cookie.Value))
	assert.Equal(t, "/", cookie.Path)
	assert.Assert(t, cookie.Secure)
	assert.Assert(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 0, cookie.MaxAge)

	// The exact issued token resolves to the same identity.
	c, _ = testContext(t)
	c.Request.AddCookie(cookie)
	user, err := auth.ResolveSession(c)
	assert.NilError(t, err)
	assert.Assert(t, user != nil)
	assert.Equal(t, "gm1", user.Username)
}

func TestResolveSessionUnknownToken(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	c, recorder := testContext(t)
	c.Request.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: "fabricated-token-value-xx"})

	user, err := auth.ResolveSession(c)
	assert.NilError(t, err)
	assert.Assert(t, user == nil)

	// The stale cookie is proactively cleared.
	cookies := recorder.Result().Cookies()
	assert.Equal(t, 1, len(cookies))
	assert.Equal(t, config.DeletedCookieValue, cookies[0].Value)
	assert.Assert(t, cookies[0].MaxAge < 0)
}

func TestResolveSessionNoCookie(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	c, recorder := testContext(t)
	user, err := auth.ResolveSession(c)
	assert.NilError(t, err)
	assert.Assert(t, user == nil)

	// No storage lookup side effects.
	assert.Equal(t, 0, len(recorder.Result().Cookies()))
}

func TestResolveSessionDeletedSentinel(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	c, recorder := testContext(t)
	c.Request.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: config.DeletedCookieValue})

	user, err := auth.ResolveSession(c)
	assert.NilError(t, err)
	assert.Assert(t, user == nil)
	assert.Equal(t, 0, len(recorder.Result().Cookies()))
}

func TestResolveSessionCorruptUserLink(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	// Plant a session pointing at a user that does not exist. Foreign keys
	// would reject this, which is exactly why it only happens to corrupt
	// databases.
	assert.NilError(t, db.Exec("PRAGMA foreign_keys = OFF").Error)
	session := model.Session{UserID: "ghost", Token: "corrupt-session-token-abc"}
	err := db.Create(&session).Error
	assert.NilError(t, err)
	assert.NilError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	c, _ := testContext(t)
	c.Request.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: session.Token})

	_, err = auth.ResolveSession(c)
	assert.ErrorIs(t, err, service.ErrServer)
}

func TestRevokeSession(t *testing.T) {
	db := setupDatabase(t)
	auth := service.NewAuthService(db)

	enrollUser(t, auth, "gm1")

	c, recorder := testContext(t)
	err := auth.IssueSession(c, "gm1")
	assert.NilError(t, err)

	cookie := recorder.Result().Cookies()[0]

	c, recorder = testContext(t)
	c.Request.AddCookie(cookie)
	err = auth.RevokeSession(c)
	assert.NilError(t, err)

	cleared := recorder.Result().Cookies()[0]
	assert.Equal(t, config.DeletedCookieValue, cleared.Value)
	assert.Assert(t, cleared.MaxAge < 0)

	// The session row is gone, the stale token now resolves anonymous.
	var count int64
	err = db.Model(&model.Session{}).Where("token = ?", cookie.Value).Count(&count).Error
	assert.NilError(t, err)
	assert.Equal(t, int64(0), count)

	c, _ = testContext(t)
	c.Request.AddCookie(cookie)
	user, err := auth.ResolveSession(c)
	assert.NilError(t, err)
	assert.Assert(t, user == nil)

	// A second revoke without a cookie is a no-op signal.
	c, _ = testContext(t)
	err = auth.RevokeSession(c)
	assert.ErrorIs(t, err, service.ErrNoActiveSession)
}
