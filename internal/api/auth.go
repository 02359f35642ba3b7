package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/AaronLay10/SeedEngine/internal/config"
)

// Role represents an authorization role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// Auth holds Basic auth credentials. Authentication is enabled only when the
// admin pair is set; otherwise every request is treated as admin.
type Auth struct {
	AdminUser    string
	AdminPass    string
	OperatorUser string
	OperatorPass string
}

// AuthFromEnv resolves SEEDENGINE_ADMIN_USER, SEEDENGINE_ADMIN_PASS,
// SEEDENGINE_OPERATOR_USER and SEEDENGINE_OPERATOR_PASS. Each honours the
// *_FILE convention of config.ResolveSecret.
func AuthFromEnv() (*Auth, error) {
	a := &Auth{}
	for _, v := range []struct {
		env string
		dst *string
	}{
		{"SEEDENGINE_ADMIN_USER", &a.AdminUser},
		{"SEEDENGINE_ADMIN_PASS", &a.AdminPass},
		{"SEEDENGINE_OPERATOR_USER", &a.OperatorUser},
		{"SEEDENGINE_OPERATOR_PASS", &a.OperatorPass},
	} {
		val, err := config.ResolveSecret(v.env)
		if err != nil {
			return nil, err
		}
		*v.dst = val
	}
	return a, nil
}

// Enabled reports whether requests must authenticate.
func (a *Auth) Enabled() bool {
	return a != nil && a.AdminUser != "" && a.AdminPass != ""
}

// authenticate returns the caller's role, or "" for bad credentials.
func (a *Auth) authenticate(r *http.Request) Role {
	if !a.Enabled() {
		return RoleAdmin
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return ""
	}
	if secureCompare(user, a.AdminUser) && secureCompare(pass, a.AdminPass) {
		return RoleAdmin
	}
	if a.OperatorUser != "" && a.OperatorPass != "" &&
		secureCompare(user, a.OperatorUser) && secureCompare(pass, a.OperatorPass) {
		return RoleOperator
	}
	return ""
}

// secureCompare is a constant-time string comparison.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// RequireRole wraps handler so only the allowed roles reach it: 401 without
// valid credentials, 403 for any other role.
func (a *Auth) RequireRole(handler http.HandlerFunc, allowed ...Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := a.authenticate(r)
		if role == "" {
			w.Header().Set("WWW-Authenticate", `Basic realm="SeedEngine"`)
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
		for _, want := range allowed {
			if role == want {
				handler(w, r)
				return
			}
		}
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	}
}

// RequireAnyRole admits admins and operators.
func (a *Auth) RequireAnyRole(handler http.HandlerFunc) http.HandlerFunc {
	return a.RequireRole(handler, RoleAdmin, RoleOperator)
}

// RequireAdmin admits admins only.
func (a *Auth) RequireAdmin(handler http.HandlerFunc) http.HandlerFunc {
	return a.RequireRole(handler, RoleAdmin)
}
