package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/notekeeper/internal/auth"
	"github.com/kbukum/notekeeper/internal/token"
)

func postJSON(engine http.Handler, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestLoginSuccess(t *testing.T) {
	r := newRig(t)
	r.addUser(t, "alice", "correct horse")

	rec := postJSON(r.engine, "/login", `{"username":"alice","password":"correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}

	cookies := rec.Result().Cookies()
	access := cookieByName(cookies, auth.AccessTokenCookie)
	refresh := cookieByName(cookies, auth.RefreshTokenCookie)
	if access == nil || refresh == nil {
		t.Fatalf("expected both session cookies, got %v", cookies)
	}
	for _, ck := range []*http.Cookie{access, refresh} {
		if !ck.HttpOnly || !ck.Secure {
			t.Errorf("cookie %s: HttpOnly=%v Secure=%v, want both true", ck.Name, ck.HttpOnly, ck.Secure)
		}
		if ck.SameSite != http.SameSiteNoneMode {
			t.Errorf("cookie %s: SameSite = %v, want SameSiteNoneMode", ck.Name, ck.SameSite)
		}
	}

	if _, err := r.tokens.Validate(access.Value, token.KindAccess); err != nil {
		t.Errorf("access cookie does not carry a valid access token: %v", err)
	}
	if _, err := r.tokens.Validate(refresh.Value, token.KindRefresh); err != nil {
		t.Errorf("refresh cookie does not carry a valid refresh token: %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	r := newRig(t)
	r.addUser(t, "alice", "correct horse")

	cases := []struct {
		name string
		body string
	}{
		{"wrong password", `{"username":"alice","password":"wrong"}`},
		{"unknown user", `{"username":"nobody","password":"whatever"}`},
		{"missing fields", `{}`},
		{"malformed json", `{"username":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(r.engine, "/login", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			body := decodeBody(t, rec)
			if body["success"] != false {
				t.Errorf("success = %v, want false", body["success"])
			}
			if body["error"] != "invalid username or password" {
				t.Errorf("error = %q, want opaque message", body["error"])
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Errorf("failed login must not set cookies, got %v", rec.Result().Cookies())
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	r := newRig(t)
	u := r.addUser(t, "alice", "correct horse")

	refreshTok, err := r.tokens.Issue(u.ID, token.KindRefresh)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := postJSON(r.engine, "/refresh", "", &http.Cookie{Name: auth.RefreshTokenCookie, Value: refreshTok})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	if body["refreshed"] != true {
		t.Errorf("refreshed = %v, want true", body["refreshed"])
	}

	cookies := rec.Result().Cookies()
	if got := len(cookies); got != 1 {
		t.Fatalf("refresh must replace only the access cookie, got %d cookies", got)
	}
	access := cookieByName(cookies, auth.AccessTokenCookie)
	if access == nil {
		t.Fatal("missing access cookie")
	}
	id, err := r.tokens.Validate(access.Value, token.KindAccess)
	if err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}
	if id != u.ID {
		t.Errorf("access token subject = %d, want %d", id, u.ID)
	}
}

func TestRefreshRejected(t *testing.T) {
	r := newRig(t)
	u := r.addUser(t, "alice", "correct horse")

	accessTok, err := r.tokens.Issue(u.ID, token.KindAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	forged := forgeSignature(t, accessTok)

	cases := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"access token in refresh slot", &http.Cookie{Name: auth.RefreshTokenCookie, Value: accessTok}},
		{"expired refresh token", &http.Cookie{Name: auth.RefreshTokenCookie, Value: expiredToken(t, token.KindRefresh)}},
		{"tampered signature", &http.Cookie{Name: auth.RefreshTokenCookie, Value: forged}},
		{"garbage", &http.Cookie{Name: auth.RefreshTokenCookie, Value: "not-a-token"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tc.cookie != nil {
				rec = postJSON(r.engine, "/refresh", "", tc.cookie)
			} else {
				rec = postJSON(r.engine, "/refresh", "")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			body := decodeBody(t, rec)
			if body["refreshed"] != false {
				t.Errorf("refreshed = %v, want false", body["refreshed"])
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Errorf("rejected refresh must not touch cookies, got %v", rec.Result().Cookies())
			}
		})
	}
}

// forgeSignature flips the signature segment of a JWT while keeping the
// header and payload intact.
func forgeSignature(t *testing.T, tok string) string {
	t.Helper()
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", tok)
	}
	parts[2] = "AAAA" + parts[2][4:]
	forged := strings.Join(parts, ".")
	if forged == tok {
		parts[2] = "BBBB" + parts[2][4:]
		forged = strings.Join(parts, ".")
	}
	return forged
}

func TestLogout(t *testing.T) {
	r := newRig(t)

	rec := postJSON(r.engine, "/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}

	cookies := rec.Result().Cookies()
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		ck := cookieByName(cookies, name)
		if ck == nil {
			t.Errorf("logout must clear cookie %s", name)
			continue
		}
		if ck.MaxAge != -1 {
			t.Errorf("cookie %s: MaxAge = %d, want -1", name, ck.MaxAge)
		}
		if ck.Value != "" {
			t.Errorf("cookie %s: value = %q, want empty", name, ck.Value)
		}
	}
}

func TestIsAuthenticated(t *testing.T) {
	r := newRig(t)
	u := r.addUser(t, "alice", "correct horse")

	accessTok, err := r.tokens.Issue(u.ID, token.KindAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := postJSON(r.engine, "/is-authenticated", "", &http.Cookie{Name: auth.AccessTokenCookie, Value: accessTok})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := decodeBody(t, rec)
	if body["authenticated"] != true {
		t.Errorf("authenticated = %v, want true", body["authenticated"])
	}
}

func TestIsAuthenticatedRejected(t *testing.T) {
	r := newRig(t)
	u := r.addUser(t, "alice", "correct horse")

	refreshTok, err := r.tokens.Issue(u.ID, token.KindRefresh)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"expired access token", &http.Cookie{Name: auth.AccessTokenCookie, Value: expiredToken(t, token.KindAccess)}},
		{"refresh token in access slot", &http.Cookie{Name: auth.AccessTokenCookie, Value: refreshTok}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tc.cookie != nil {
				rec = postJSON(r.engine, "/is-authenticated", "", tc.cookie)
			} else {
				rec = postJSON(r.engine, "/is-authenticated", "")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAuthenticatorSkipsDeletedUser(t *testing.T) {
	r := newRig(t)
	u := r.addUser(t, "alice", "correct horse")

	accessTok, err := r.tokens.Issue(u.ID, token.KindAccess)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	r.users.delete(u.ID)

	rec := postJSON(r.engine, "/is-authenticated", "", &http.Cookie{Name: auth.AccessTokenCookie, Value: accessTok})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRegister(t *testing.T) {
	r := newRig(t)

	rec := postJSON(r.engine, "/register", `{"username":"alice","email":"alice@example.com","password":"correct horse"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["username"] != "alice" {
		t.Errorf("username = %v, want alice", body["username"])
	}
	if body["email"] != "alice@example.com" {
		t.Errorf("email = %v", body["email"])
	}
	if _, ok := body["id"]; !ok {
		t.Error("response missing id")
	}
	if _, ok := body["password"]; ok {
		t.Error("response must not echo the password")
	}

	// The new credentials work immediately.
	login := postJSON(r.engine, "/login", `{"username":"alice","password":"correct horse"}`)
	if login.Code != http.StatusOK {
		t.Fatalf("login after register: status = %d, want %d", login.Code, http.StatusOK)
	}
}

func TestRegisterValidation(t *testing.T) {
	r := newRig(t)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing username", `{"password":"correct horse"}`, "username"},
		{"short password", `{"username":"alice","password":"short"}`, "password"},
		{"bad email", `{"username":"alice","email":"not-an-email","password":"correct horse"}`, "email"},
		{"username too long", `{"username":"` + strings.Repeat("a", 151) + `","password":"correct horse"}`, "username"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(r.engine, "/register", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.field) {
				t.Errorf("body %q does not name field %q", rec.Body.String(), tc.field)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := newRig(t)
	r.addUser(t, "alice", "correct horse")

	rec := postJSON(r.engine, "/register", `{"username":"alice","password":"another pass"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusConflict, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ALREADY_EXISTS") {
		t.Errorf("body %q does not carry the conflict code", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "username") {
		t.Errorf("body %q does not name the conflicting field", rec.Body.String())
	}
}
