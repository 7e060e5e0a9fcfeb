package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Hasninemamud/AuctionCraft/internal/config"
	"github.com/Hasninemamud/AuctionCraft/internal/models"
	"github.com/Hasninemamud/AuctionCraft/internal/utils"
)

// fakeMailer records outbound mail instead of talking to SMTP.
type fakeMailer struct {
	bodies []string
}

func (m *fakeMailer) Send(to string, subject string, body string) error {
	m.bodies = append(m.bodies, body)
	return nil
}

// lastCode pulls the 6-digit code out of the most recent OTP email.
func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.bodies)
	body := m.bodies[len(m.bodies)-1]
	const prefix = "Your one-time login code is: "
	idx := strings.Index(body, prefix)
	require.GreaterOrEqual(t, idx, 0)
	return body[idx+len(prefix) : idx+len(prefix)+6]
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	// one connection, or each pooled conn gets its own empty :memory: db
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(
		&models.User{},
		&models.OTPCode{},
		&models.RefreshToken{},
		&models.Notification{},
	))
	return database
}

func newAuthHandler(t *testing.T) (*AuthHandler, *fakeMailer) {
	t.Helper()
	mailer := &fakeMailer{}
	cfg := config.Config{
		JwtSecret:        "test-secret",
		JwtAccessMinutes: 15,
		JwtRefreshHours:  24,
		OtpMinutes:       10,
	}
	return NewAuthHandler(newTestDB(t), cfg, mailer), mailer
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return recorder
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	h, _ := newAuthHandler(t)

	first := postJSON(t, h.Register, `{"username":"alice","email":"alice@example.com","password":"strongpass123"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	sameEmail := postJSON(t, h.Register, `{"username":"alice2","email":"alice@example.com","password":"strongpass123"}`)
	require.Equal(t, http.StatusConflict, sameEmail.Code)

	sameUsername := postJSON(t, h.Register, `{"username":"alice","email":"other@example.com","password":"strongpass123"}`)
	require.Equal(t, http.StatusConflict, sameUsername.Code)

	var count int64
	require.NoError(t, h.DB.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestRequestOTP_ProvisionsAccount(t *testing.T) {
	h, mailer := newAuthHandler(t)

	res := postJSON(t, h.RequestOTP, `{"email":"new@example.com"}`)
	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, mailer.bodies, 1)

	var user models.User
	require.NoError(t, h.DB.Where("email = ?", "new@example.com").First(&user).Error)
	require.False(t, user.HasUsablePassword())
}

func TestVerifyOTP_OlderCodeStillValid(t *testing.T) {
	h, mailer := newAuthHandler(t)

	res := postJSON(t, h.RequestOTP, `{"email":"bidder@example.com"}`)
	require.Equal(t, http.StatusOK, res.Code)
	firstCode := mailer.lastCode(t)

	res = postJSON(t, h.RequestOTP, `{"email":"bidder@example.com"}`)
	require.Equal(t, http.StatusOK, res.Code)

	// requesting a second code must not invalidate the first
	verify := postJSON(t, h.VerifyOTP, `{"email":"bidder@example.com","code":"`+firstCode+`"}`)
	require.Equal(t, http.StatusOK, verify.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(verify.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["accessToken"])
	require.NotEmpty(t, resp["refreshToken"])
}

func TestVerifyOTP_ReplayRejected(t *testing.T) {
	h, mailer := newAuthHandler(t)

	res := postJSON(t, h.RequestOTP, `{"email":"bidder@example.com"}`)
	require.Equal(t, http.StatusOK, res.Code)
	code := mailer.lastCode(t)

	verify := postJSON(t, h.VerifyOTP, `{"email":"bidder@example.com","code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, verify.Code)

	// the row was consumed; the same code must not work twice
	replay := postJSON(t, h.VerifyOTP, `{"email":"bidder@example.com","code":"`+code+`"}`)
	require.Equal(t, http.StatusBadRequest, replay.Code)

	var count int64
	require.NoError(t, h.DB.Model(&models.OTPCode{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestVerifyOTP_ExpiredCodeRejected(t *testing.T) {
	h, _ := newAuthHandler(t)

	user := models.User{Username: "carol", Email: "carol@example.com"}
	require.NoError(t, h.DB.Create(&user).Error)

	codeHash, err := utils.HashOTP("123456")
	require.NoError(t, err)
	otp := models.OTPCode{
		UserID:    &user.ID,
		Email:     user.Email,
		CodeHash:  codeHash,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, h.DB.Create(&otp).Error)

	verify := postJSON(t, h.VerifyOTP, `{"email":"carol@example.com","code":"123456"}`)
	require.Equal(t, http.StatusBadRequest, verify.Code)
}

func TestVerifyOTP_WrongCodeRejected(t *testing.T) {
	h, mailer := newAuthHandler(t)

	res := postJSON(t, h.RequestOTP, `{"email":"dave@example.com"}`)
	require.Equal(t, http.StatusOK, res.Code)
	code := mailer.lastCode(t)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	verify := postJSON(t, h.VerifyOTP, `{"email":"dave@example.com","code":"`+wrong+`"}`)
	require.Equal(t, http.StatusBadRequest, verify.Code)

	// the real code is still live after a failed attempt
	verify = postJSON(t, h.VerifyOTP, `{"email":"dave@example.com","code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, verify.Code)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	h, _ := newAuthHandler(t)

	user := models.User{Username: "erin", Email: "erin@example.com", PasswordHash: "x"}
	require.NoError(t, h.DB.Create(&user).Error)
	token := models.RefreshToken{
		UserID:    user.ID,
		Token:     "refresh-token-value",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, h.DB.Create(&token).Error)

	res := postJSON(t, h.Logout, `{"refreshToken":"refresh-token-value"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var stored models.RefreshToken
	require.NoError(t, h.DB.First(&stored, "token = ?", "refresh-token-value").Error)
	require.NotNil(t, stored.RevokedAt)

	// revoking again is a no-op, not an error
	res = postJSON(t, h.Logout, `{"refreshToken":"refresh-token-value"}`)
	require.Equal(t, http.StatusOK, res.Code)
}
