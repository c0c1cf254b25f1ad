package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/auth"
	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/validate"
)

func withPrincipal(req *http.Request, user *model.User) *http.Request {
	ctx := auth.ContextWithPrincipal(req.Context(), &auth.Principal{User: user, Token: &auth.Token{Type: "access"}})
	return req.WithContext(ctx)
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_ObtainPair(t *testing.T) {
	t.Parallel()

	svc := &fakeTokenService{pair: &model.TokenPair{Access: "access.jwt", Refresh: "refresh.jwt"}}
	h := NewAuthHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.ObtainPair(rec, jsonRequest(http.MethodPost, "/api/v1/auth/token", `{"email":"refugio@example.com","password":"Secreta123"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var pair model.TokenPair
	if err := json.NewDecoder(rec.Body).Decode(&pair); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if pair.Access != "access.jwt" || pair.Refresh != "refresh.jwt" {
		t.Errorf("unexpected pair %+v", pair)
	}
	if svc.credentials == nil || svc.credentials.Email != "refugio@example.com" {
		t.Errorf("credentials not passed through: %+v", svc.credentials)
	}
}

func TestAuthHandler_ObtainPairRejected(t *testing.T) {
	t.Parallel()

	svc := &fakeTokenService{err: &auth.AuthenticationFailedError{
		Code:   auth.CodeNoActiveAccount,
		Detail: "No active account found with the given credentials",
	}}
	rec := httptest.NewRecorder()
	NewAuthHandler(svc, discardLogger()).ObtainPair(rec, jsonRequest(http.MethodPost, "/", `{"email":"x@y.com","password":"bad"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != auth.CodeNoActiveAccount {
		t.Errorf("expected no_active_account, got %s", body.Code)
	}
}

func TestAuthHandler_RefreshAccessOnly(t *testing.T) {
	t.Parallel()

	svc := &fakeTokenService{pair: &model.TokenPair{Access: "new.access"}}
	rec := httptest.NewRecorder()
	NewAuthHandler(svc, discardLogger()).Refresh(rec, jsonRequest(http.MethodPost, "/", `{"refresh":"old.refresh"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"refresh"`) {
		t.Errorf("refresh must be omitted without rotation, got %s", rec.Body.String())
	}
	if svc.refresh.Refresh != "old.refresh" {
		t.Errorf("unexpected refresh input %+v", svc.refresh)
	}
}

func TestAuthHandler_RefreshInvalid(t *testing.T) {
	t.Parallel()

	svc := &fakeTokenService{err: &auth.InvalidTokenError{Code: auth.CodeTokenNotValid, Detail: "Token is blacklisted"}}
	rec := httptest.NewRecorder()
	NewAuthHandler(svc, discardLogger()).Refresh(rec, jsonRequest(http.MethodPost, "/", `{"refresh":"revoked"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != auth.CodeTokenNotValid || body.detailString(t) != "Token is blacklisted" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestAuthHandler_VerifyAndBlacklist(t *testing.T) {
	t.Parallel()

	svc := &fakeTokenService{}
	h := NewAuthHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.Verify(rec, jsonRequest(http.MethodPost, "/", `{"token":"t"}`))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "{}" {
		t.Errorf("verify: expected 200 {}, got %d %s", rec.Code, rec.Body.String())
	}
	if svc.verify.Token != "t" {
		t.Errorf("unexpected verify input %+v", svc.verify)
	}

	rec = httptest.NewRecorder()
	h.Blacklist(rec, jsonRequest(http.MethodPost, "/", `{"refresh":"r"}`))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "{}" {
		t.Errorf("blacklist: expected 200 {}, got %d %s", rec.Code, rec.Body.String())
	}
	if svc.blacklisted.Refresh != "r" {
		t.Errorf("unexpected blacklist input %+v", svc.blacklisted)
	}
}

func TestAuthHandler_VerifyFieldError(t *testing.T) {
	t.Parallel()

	errs := validate.Errors{}
	errs.AddCode("token", validate.CodeRequired, "El token")
	rec := httptest.NewRecorder()
	NewAuthHandler(&fakeTokenService{err: errs}, discardLogger()).Verify(rec, jsonRequest(http.MethodPost, "/", `{}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != "invalid_request_data" || len(body.fieldErrors(t)["token"]) != 1 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Parallel()

	user := &model.User{ID: uuid.New(), Role: model.RoleShelter}
	svc := &fakeTokenService{}
	rec := httptest.NewRecorder()
	req := withPrincipal(jsonRequest(http.MethodPost, "/", `{"refresh":"r"}`), user)

	NewAuthHandler(svc, discardLogger()).Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %s", rec.Body.String())
	}
	if svc.logout == nil || svc.logout.User != user || svc.logoutIn.Refresh != "r" {
		t.Errorf("logout not passed through: %+v %+v", svc.logout, svc.logoutIn)
	}
}

func TestAuthHandler_MeAndChangePassword(t *testing.T) {
	t.Parallel()

	user := &model.User{ID: uuid.New(), Email: "refugio@example.com", Role: model.RoleShelter}
	svc := &fakeTokenService{pair: &model.TokenPair{Access: "a2", Refresh: "r2"}}
	h := NewAuthHandler(svc, discardLogger())

	rec := httptest.NewRecorder()
	h.Me(rec, withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), user))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), user.ID.String()) {
		t.Errorf("me: unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	body := `{"current_password":"Secreta123","new_password":"Nueva12345","confirm_password":"Nueva12345"}`
	h.ChangePassword(rec, withPrincipal(jsonRequest(http.MethodPost, "/", body), user))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"access":"a2"`) {
		t.Errorf("change password: unexpected response %d %s", rec.Code, rec.Body.String())
	}
	if svc.changedFor != user || svc.change.NewPassword != "Nueva12345" {
		t.Errorf("change not passed through: %+v", svc.change)
	}
}

func TestAuthHandler_MalformedBody(t *testing.T) {
	t.Parallel()

	svc := &fakeTokenService{}
	rec := httptest.NewRecorder()
	NewAuthHandler(svc, discardLogger()).ObtainPair(rec, jsonRequest(http.MethodPost, "/", `{"email":`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "parse_error" {
		t.Errorf("expected parse_error, got %s", body.Code)
	}
	if svc.credentials != nil {
		t.Error("service must not be called for a malformed body")
	}
}
