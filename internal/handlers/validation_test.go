package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/cupidworks/valentine-backend/pkg/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "console")
	m.Run()
}

type samplePayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone10"`
}

func bindProbe(body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var payload samplePayload
	if bindAndValidate(c, &payload) {
		c.Status(http.StatusOK)
	}
	return w
}

func TestBindAndValidateAcceptsFormattedPhones(t *testing.T) {
	w := bindProbe(`{"name":"Dana","email":"dana@example.com","phone":"(555) 123-4567"}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBindAndValidateRejectsBadPayloads(t *testing.T) {
	cases := map[string]string{
		"invalid json":   `{"name":`,
		"missing name":   `{"email":"dana@example.com","phone":"5551234567"}`,
		"bad email":      `{"name":"Dana","email":"not-an-email","phone":"5551234567"}`,
		"short phone":    `{"name":"Dana","email":"dana@example.com","phone":"12345"}`,
		"eleven digits":  `{"name":"Dana","email":"dana@example.com","phone":"15551234567"}`,
		"alphabet phone": `{"name":"Dana","email":"dana@example.com","phone":"call-me-maybe"}`,
	}

	for name, body := range cases {
		w := bindProbe(body)
		require.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}

func TestFormatValidationErrorMessages(t *testing.T) {
	w := bindProbe(`{"email":"dana@example.com","phone":"12345"}`)
	require.Contains(t, w.Body.String(), "name is required")
	require.Contains(t, w.Body.String(), "phone must contain exactly 10 digits")
}
