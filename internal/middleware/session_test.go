package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Session(), RequestLogger())
	router.GET("/whoami", func(c *gin.Context) {
		id, ok := GetSessionID(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no session")
			return
		}
		c.String(http.StatusOK, id)
	})
	return router
}

func TestSession(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		minted bool
	}{
		{"missing header", "", true},
		{"blank header", "   ", true},
		{"existing session", "abc-123", false},
		{"overlong session", strings.Repeat("x", maxSessionIDBytes+1), true},
	}

	router := newSessionRouter()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/whoami", nil)
			if tc.header != "" {
				req.Header.Set(SessionHeader, tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			echoed := w.Header().Get(SessionHeader)
			if echoed != w.Body.String() {
				t.Errorf("header %q does not match context %q", echoed, w.Body.String())
			}

			if tc.minted {
				if _, err := uuid.Parse(echoed); err != nil {
					t.Errorf("expected a minted UUID, got %q", echoed)
				}
			} else if echoed != tc.header {
				t.Errorf("expected %q to be kept, got %q", tc.header, echoed)
			}
		})
	}
}

func TestGetSessionID_NotSet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := GetSessionID(c); ok {
		t.Error("expected no session ID without the middleware")
	}
}
