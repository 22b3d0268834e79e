package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/cupidworks/valentine-backend/pkg/errors"
)

func performRequest(write func(c *gin.Context)) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	write(c)
	return rec
}

func TestSuccessEnvelope(t *testing.T) {
	rec := performRequest(func(c *gin.Context) {
		Success(c, http.StatusCreated, gin.H{"id": "abc"})
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Nil(t, body.Error)
}

func TestErrorUsesAppErrorStatus(t *testing.T) {
	rec := performRequest(func(c *gin.Context) {
		Error(c, appErrors.ErrSelfReferral)
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "SELF_REFERRAL", body.Error.Code)
}

func TestStatusMergesExtraFields(t *testing.T) {
	rec := performRequest(func(c *gin.Context) {
		Status(c, http.StatusOK, "approved_student", "Welcome!", gin.H{
			"ticket": gin.H{"referralCode": "AB12CD34"},
		})
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "approved_student", payload["status"])
	require.Equal(t, "Welcome!", payload["message"])
	require.Contains(t, payload, "ticket")
}
