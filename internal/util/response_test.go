package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusOf(ErrLessonNotFound))
	assert.Equal(t, http.StatusNotFound, StatusOf(fmt.Errorf("load: %w", ErrModuleNotFound)))
	assert.Equal(t, http.StatusConflict, StatusOf(ErrRunInProgress))
	assert.Equal(t, http.StatusBadRequest, StatusOf(ErrUnsupportedLanguage))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("disk full")))
}

func TestServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err     error
		status  int
		message string
	}{
		{ErrEmptyQuestion, http.StatusBadRequest, ErrEmptyQuestion.Error()},
		{fmt.Errorf("run: %w", ErrRunInProgress), http.StatusConflict, "run: " + ErrRunInProgress.Error()},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/playground/run", nil)

		ServiceError(c, tc.err)

		require.Equal(t, tc.status, w.Code)
		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.status, resp.Code)
		assert.Equal(t, tc.message, resp.Message)
	}
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("12")
	assert.True(t, ok)
	assert.Equal(t, 12, id)

	for _, s := range []string{"", "0", "-3", "abc"} {
		_, ok := ParseID(s)
		assert.False(t, ok, s)
	}
}
