package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/doskvol-ltd/doskvol/internal/config"
	"github.com/doskvol-ltd/doskvol/internal/controller"
	"github.com/doskvol-ltd/doskvol/internal/middleware"
	"github.com/doskvol-ltd/doskvol/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"gotest.tools/v3/assert"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()

	databaseService := service.NewDatabaseService(service.DatabaseServiceConfig{
		DatabasePath: ":memory:",
	})

	err := databaseService.Init()
	assert.NilError(t, err)

	db := databaseService.GetDatabase()

	authService := service.NewAuthService(db)
	crewService := service.NewCrewService(db)
	characterService := service.NewCharacterService(db, crewService)

	contextMiddleware := middleware.NewContextMiddleware(authService)
	assert.NilError(t, contextMiddleware.Init())
	router.Use(contextMiddleware.Middleware())

	group := router.Group("/api")

	authController := controller.NewAuthController(group, authService)
	authController.SetupRoutes()

	crewController := controller.NewCrewController(group, crewService, characterService)
	crewController.SetupRoutes()

	characterController := controller.NewCharacterController(group, characterService)
	characterController.SetupRoutes()

	healthController := controller.NewHealthController(group)
	healthController.SetupRoutes()

	return router
}

func jsonRequest(t *testing.T, method string, path string, body any, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var reader *strings.Reader = strings.NewReader("")

	if body != nil {
		payload, err := json.Marshal(body)
		assert.NilError(t, err)
		reader = strings.NewReader(string(payload))
	}

	req := httptest.NewRequest(method, path, reader)

	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	return req
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()

	code, err := totp.GenerateCodeCustom(secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	assert.NilError(t, err)

	return code
}

// enroll registers a user through the HTTP surface and returns the secret
// and the issued session cookie.
func enroll(t *testing.T, router *gin.Engine, username string) (string, *http.Cookie) {
	t.Helper()

	recorder := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/auth/register/begin", controller.BeginEnrollmentRequest{Username: username})
	router.ServeHTTP(recorder, req)

	assert.Equal(t, 200, recorder.Code)

	var beginResp struct {
		Totp service.TotpDescriptor `json:"totp"`
	}
	err := json.Unmarshal(recorder.Body.Bytes(), &beginResp)
	assert.NilError(t, err)
	assert.Assert(t, beginResp.Totp.Secret != "")

	recorder = httptest.NewRecorder()
	req = jsonRequest(t, "POST", "/api/auth/register", controller.CompleteEnrollmentRequest{
		Username: username,
		Secret:   beginResp.Totp.Secret,
		Code:     currentCode(t, beginResp.Totp.Secret),
	})
	router.ServeHTTP(recorder, req)

	assert.Equal(t, 200, recorder.Code)

	cookies := recorder.Result().Cookies()
	assert.Equal(t, 1, len(cookies))
	assert.Equal(t, config.SessionCookieName, cookies[0].Name)

	return beginResp.Totp.Secret, cookies[0]
}

func TestEnrollmentFlow(t *testing.T) {
	router := setupRouter(t)

	_, cookie := enroll(t, router, "gm1")

	// The issued cookie resolves to the enrolled user.
	recorder := httptest.NewRecorder()
	req := jsonRequest(t, "GET", "/api/auth/me", nil, cookie)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, 200, recorder.Code)

	var meResp struct {
		IsLoggedIn bool   `json:"isLoggedIn"`
		Username   string `json:"username"`
	}
	err := json.Unmarshal(recorder.Body.Bytes(), &meResp)
	assert.NilError(t, err)
	assert.Assert(t, meResp.IsLoggedIn)
	assert.Equal(t, "gm1", meResp.Username)
}

func TestEnrollmentRejectsBadCode(t *testing.T) {
	router := setupRouter(t)

	recorder := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/auth/register/begin", controller.BeginEnrollmentRequest{Username: "gm1"})
	router.ServeHTTP(recorder, req)
	assert.Equal(t, 200, recorder.Code)

	var beginResp struct {
		Totp service.TotpDescriptor `json:"totp"`
	}
	err := json.Unmarshal(recorder.Body.Bytes(), &beginResp)
	assert.NilError(t, err)

	recorder = httptest.NewRecorder()
	req = jsonRequest(t, "POST", "/api/auth/register", controller.CompleteEnrollmentRequest{
		Username: "gm1",
		Secret:   beginResp.Totp.Secret,
		Code:     "000000",
	})
	router.ServeHTTP(recorder, req)

	assert.Equal(t, 401, recorder.Code)
	assert.Equal(t, 0, len(recorder.Result().Cookies()))
}

func TestEnrollmentRejectsInvalidUsername(t *testing.T) {
	router := setupRouter(t)

	for _, username := range []string{"", "user:name"} {
		recorder := httptest.NewRecorder()
		req := jsonRequest(t, "POST", "/api/auth/register/begin", controller.BeginEnrollmentRequest{Username: username})
		router.ServeHTTP(recorder, req)
		assert.Equal(t, 400, recorder.Code)
	}
}

func TestEnrollmentDuplicateUsername(t *testing.T) {
	router := setupRouter(t)

	enroll(t, router, "gm1")

	recorder := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/auth/register/begin", controller.BeginEnrollmentRequest{Username: "gm1"})
	router.ServeHTTP(recorder, req)

	assert.Equal(t, 409, recorder.Code)
}

func TestLoginFlow(t *testing.T) {
	router := setupRouter(t)

	secret, _ := enroll(t, router, "gm1")

	recorder := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/auth/login", controller.LoginRequest{
		Username: "gm1",
		Code:     currentCode(t, secret),
	})
	router.ServeHTTP(recorder, req)

	assert.Equal(t, 200, recorder.Code)

	cookies := recorder.Result().Cookies()
	assert.Equal(t, 1, len(cookies))
	assert.Assert(t, cookies[0].Value != "")
}

func TestLoginDoesNotRevealUnknownUsers(t *testing.T) {
	router := setupRouter(t)

	secret, _ := enroll(t, router, "gm1")

	// Wrong code for a real user and any code for an unknown user produce
	// identical responses.
	recorder := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/auth/login", controller.LoginRequest{Username: "gm1", Code: "000000"})
	router.ServeHTTP(recorder, req)
	badCodeBody := recorder.Body.String()
	assert.Equal(t, 401, recorder.Code)

	recorder = httptest.NewRecorder()
	req = jsonRequest(t, "POST", "/api/auth/login", controller.LoginRequest{Username: "nobody", Code: currentCode(t, secret)})
	router.ServeHTTP(recorder, req)
	assert.Equal(t, 401, recorder.Code)
	assert.Equal(t, badCodeBody, recorder.Body.String())
}

func TestLogoutFlow(t *testing.T) {
	router := setupRouter(t)

	_, cookie := enroll(t, router, "gm1")

	recorder := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/api/auth/logout", nil, cookie)
	router.ServeHTTP(recorder, req)
	assert.Equal(t, 200, recorder.Code)

	cleared := recorder.Result().Cookies()
	assert.Equal(t, 1, len(cleared))
	assert.Equal(t, config.DeletedCookieValue, cleared[0].Value)

	// The stale cookie now resolves anonymous.
	recorder = httptest.NewRecorder()
	req = jsonRequest(t, "GET", "/api/auth/me", nil, cookie)
	router.ServeHTTP(recorder, req)
	assert.Equal(t, 200, recorder.Code)

	var meResp struct {
		IsLoggedIn bool `json:"isLoggedIn"`
	}
	err := json.Unmarshal(recorder.Body.Bytes(), &meResp)
	assert.NilError(t, err)
	assert.Assert(t, !meResp.IsLoggedIn)

	// Logging out again without a cookie does not error.
	recorder = httptest.NewRecorder()
	req = jsonRequest(t, "POST", "/api/auth/logout", nil)
	router.ServeHTTP(recorder, req)
	assert.Equal(t, 200, recorder.Code)
}
