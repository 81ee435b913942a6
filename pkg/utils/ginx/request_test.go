package ginx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newContext(headers map[string]string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{"real ip header", map[string]string{"CF-Connecting-IP": "9.9.9.9", "X-Forwarded-For": "1.1.1.1"}, "9.9.9.9"},
		{"forwarded for", map[string]string{"X-Forwarded-For": " 1.1.1.1, 10.0.0.1 "}, "1.1.1.1, 10.0.0.1"},
		{"no headers", nil, UnknownClientIP},
		{"long chain", map[string]string{"X-Forwarded-For": strings.Repeat("1", 300)}, strings.Repeat("1", MaxClientIPLength)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetClientIP(newContext(tc.headers)))
		})
	}
}

func TestGetClientIDCached(t *testing.T) {
	c := newContext(map[string]string{"X-Forwarded-For": "1.1.1.1"})
	assert.Equal(t, "1.1.1.1", GetClientID(c))

	c.Request.Header.Set("X-Forwarded-For", "2.2.2.2")
	assert.Equal(t, "1.1.1.1", GetClientID(c))
}

func TestGetIntFromQuery(t *testing.T) {
	c := newContext(nil)
	c.Request = httptest.NewRequest(http.MethodGet, "/?min=3&bad=x&empty=", nil)

	v, err := GetIntFromQuery(c, "min", 10)
	assert.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = GetIntFromQuery(c, "missing", 10)
	assert.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = GetIntFromQuery(c, "empty", 10)
	assert.NoError(t, err)
	assert.Equal(t, 10, v)

	_, err = GetIntFromQuery(c, "bad", 10)
	assert.Error(t, err)
}
