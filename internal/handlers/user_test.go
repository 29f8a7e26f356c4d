package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFail(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NotZero(t, rec.Body.Len())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLoginRejectsBadPayload(t *testing.T) {
	req := httptest.NewRequest("POST", "/user/login", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	LoginHandler(rec, req)

	resp := decodeFail(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, resp["ok"])
	assert.NotEmpty(t, resp["message"])
}

func TestCreateUserRejectsBadPayload(t *testing.T) {
	req := httptest.NewRequest("POST", "/user/create", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	CreateUserHandler(rec, req)

	resp := decodeFail(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, resp["ok"])
}

func TestClaimRequiresValidToken(t *testing.T) {
	req := httptest.NewRequest("POST", "/user/claim", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	ClaimEphemeralHandler(rec, req)

	resp := decodeFail(t, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, false, resp["ok"])

	req = httptest.NewRequest("POST", "/user/claim", strings.NewReader("{}"))
	req.Header.Set("Cookie", "auth_token=not.a.jwt")
	rec = httptest.NewRecorder()
	ClaimEphemeralHandler(rec, req)

	resp = decodeFail(t, rec)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, false, resp["ok"])
}

func TestExtractTokenFromCookie(t *testing.T) {
	assert.Equal(t, "abc", extractTokenFromCookie("auth_token=abc"))
	assert.Equal(t, "abc", extractTokenFromCookie("theme=dark; auth_token=abc; lang=en"))
	assert.Empty(t, extractTokenFromCookie("theme=dark"))
}
