package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwtClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/me", func(c *gin.Context) {
		id, ok := currentUser(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": id.Hex()})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	userID := primitive.NewObjectID()
	valid := jwtClaims{
		UserID:           userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	expired := valid
	expired.RegisteredClaims = jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}
	noExpiry := jwtClaims{UserID: userID.Hex()}
	badID := valid
	badID.UserID = "not-an-object-id"

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), valid), http.StatusOK},
		{"lowercase scheme", "bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), valid), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), valid), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired), http.StatusUnauthorized},
		{"no expiry", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry), http.StatusUnauthorized},
		{"bad user id", "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), badID), http.StatusUnauthorized},
		{"unsigned", "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), http.StatusUnauthorized},
	}
	router := authRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["userId"] != userID.Hex() {
				t.Errorf("userId = %q, want %q", body["userId"], userID.Hex())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestIDKey)) })

	tests := []struct {
		name     string
		incoming string
	}{
		{"propagated", "req-123"},
		{"generated", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(headerRequestID, tt.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(headerRequestID)
			if got == "" || got != w.Body.String() {
				t.Fatalf("header %q, context %q", got, w.Body.String())
			}
			if tt.incoming != "" && got != tt.incoming {
				t.Errorf("request id = %q, want %q", got, tt.incoming)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantAllow  string
		wantCredOK bool
	}{
		{name: "any origin", origins: nil, origin: "https://app.example", wantAllow: "*"},
		{name: "listed origin", origins: []string{"https://app.example"}, origin: "https://app.example", wantAllow: "https://app.example", wantCredOK: true},
		{name: "unlisted origin", origins: []string{"https://app.example"}, origin: "https://evil.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("allow origin = %q, want %q", got, tt.wantAllow)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials") == "true"; got != tt.wantCredOK {
				t.Errorf("allow credentials = %v, want %v", got, tt.wantCredOK)
			}
		})
	}
}
