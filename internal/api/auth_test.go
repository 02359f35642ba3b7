package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuth() *Auth {
	return &Auth{
		AdminUser:    "admin",
		AdminPass:    "secret",
		OperatorUser: "operator",
		OperatorPass: "opsecret",
	}
}

// call runs handler behind wrap and reports whether it was reached.
func call(wrap func(http.HandlerFunc) http.HandlerFunc, user, pass string) (bool, *httptest.ResponseRecorder) {
	called := false
	handler := wrap(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/seeds", nil)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return called, w
}

func TestAuthDisabledWithoutAdminCredentials(t *testing.T) {
	for name, a := range map[string]*Auth{
		"nil":           nil,
		"empty":         {},
		"operator only": {OperatorUser: "operator", OperatorPass: "opsecret"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, a.Enabled())
			called, w := call(a.RequireAdmin, "", "")
			assert.True(t, called)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestAuthRequiresCredentials(t *testing.T) {
	a := testAuth()
	require.True(t, a.Enabled())

	called, w := call(a.RequireAnyRole, "", "")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Basic realm="SeedEngine"`, w.Header().Get("WWW-Authenticate"))
}

func TestAuthRoles(t *testing.T) {
	a := testAuth()
	cases := []struct {
		name       string
		wrap       func(http.HandlerFunc) http.HandlerFunc
		user, pass string
		want       int
	}{
		{"admin any", a.RequireAnyRole, "admin", "secret", http.StatusOK},
		{"operator any", a.RequireAnyRole, "operator", "opsecret", http.StatusOK},
		{"wrong password", a.RequireAnyRole, "admin", "wrongpassword", http.StatusUnauthorized},
		{"operator with admin password", a.RequireAnyRole, "operator", "secret", http.StatusUnauthorized},
		{"admin only allows admin", a.RequireAdmin, "admin", "secret", http.StatusOK},
		{"admin only rejects operator", a.RequireAdmin, "operator", "opsecret", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called, w := call(tc.wrap, tc.user, tc.pass)
			assert.Equal(t, tc.want, w.Code)
			assert.Equal(t, tc.want == http.StatusOK, called)
		})
	}
}

func TestAuthWithOnlyAdminConfigured(t *testing.T) {
	a := &Auth{AdminUser: "admin", AdminPass: "secret"}

	called, _ := call(a.RequireAnyRole, "admin", "secret")
	assert.True(t, called)

	called, w := call(a.RequireAnyRole, "", "")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// An unconfigured operator pair never matches, even when empty.
	called, w = call(a.RequireAnyRole, "operator", "anything")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthFromEnv(t *testing.T) {
	dir := t.TempDir()
	passFile := filepath.Join(dir, "admin_pass")
	require.NoError(t, os.WriteFile(passFile, []byte("from-file\n"), 0o600))

	t.Setenv("SEEDENGINE_ADMIN_USER", "admin")
	t.Setenv("SEEDENGINE_ADMIN_PASS", "from-env")
	t.Setenv("SEEDENGINE_ADMIN_PASS_FILE", passFile)
	t.Setenv("SEEDENGINE_OPERATOR_USER", "")
	t.Setenv("SEEDENGINE_OPERATOR_PASS", "")

	a, err := AuthFromEnv()
	require.NoError(t, err)
	assert.True(t, a.Enabled())
	assert.Equal(t, "admin", a.AdminUser)
	assert.Equal(t, "from-file", a.AdminPass)
	assert.Empty(t, a.OperatorUser)
}

func TestAuthFromEnvMissingFile(t *testing.T) {
	t.Setenv("SEEDENGINE_ADMIN_USER_FILE", filepath.Join(t.TempDir(), "missing"))
	_, err := AuthFromEnv()
	assert.Error(t, err)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, secureCompare("test", "test"))
	assert.False(t, secureCompare("test", "Test"))
	assert.False(t, secureCompare("test", "test1"))
	assert.False(t, secureCompare("", "test"))
}
