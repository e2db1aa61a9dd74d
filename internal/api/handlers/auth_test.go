package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mkaradima/support-chat-backend/internal/api/middleware"
	"github.com/mkaradima/support-chat-backend/internal/domain"
	"github.com/mkaradima/support-chat-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, client *http.Client, url string, payload interface{}) *http.Response {
	t.Helper()

	body, _ := json.Marshal(payload)
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	return resp
}

func doJSON(t *testing.T, client *http.Client, method, url string, payload interface{}) *http.Response {
	t.Helper()

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest(method, url, bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful registration",
			request: map[string]string{
				"username": "Alice",
				"email":    "alice@example.com",
				"password": "secret1",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.RegisterResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, "alice", result.Username)
				assert.Equal(t, "alice@example.com", result.Email)
				assert.NotZero(t, result.ID)
				assert.NotZero(t, result.SessionID)

				// The session cookie was set.
				var found bool
				for _, cookie := range resp.Cookies() {
					if cookie.Name == middleware.SessionCookieName && cookie.Value != "" {
						found = true
					}
				}
				assert.True(t, found, "session cookie not set")
			},
		},
		{
			name: "missing email",
			request: map[string]string{
				"username": "bob",
				"password": "secret1",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "short password",
			request: map[string]string{
				"username": "bob",
				"email":    "bob@example.com",
				"password": "12345",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "short username",
			request: map[string]string{
				"username": "bo",
				"email":    "bo@example.com",
				"password": "secret1",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid email",
			request: map[string]string{
				"username": "bob",
				"email":    "nonsense",
				"password": "secret1",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username case-insensitive",
			request: map[string]string{
				"username": "ExistingUser",
				"email":    "fresh@example.com",
				"password": "secret1",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithUsername("existinguser").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "duplicate email",
			request: map[string]string{
				"username": "freshuser",
				"email":    "taken@example.com",
				"password": "secret1",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("taken@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := postJSON(t, http.DefaultClient, ts.APIURL("/user_auth"), tt.request)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_ListUsers(t *testing.T) {
	ts := testutil.NewTestServer(t)

	testutil.NewUserBuilder().WithUsername("first").Build(t, ts.DB.DB)
	testutil.NewUserBuilder().WithUsername("second").Build(t, ts.DB.DB)

	resp, err := http.Get(ts.APIURL("/user_auth"))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var users []map[string]interface{}
	testutil.AssertJSONResponse(t, resp, &users)
	require.Len(t, users, 2)
	for _, user := range users {
		assert.Contains(t, user, "id")
		assert.Contains(t, user, "username")
		assert.Contains(t, user, "email")
		assert.NotContains(t, user, "password_hash")
	}
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("loginuser").
		WithPassword("correctpassword").
		Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful login",
			request: map[string]string{
				"username": user.Username,
				"password": rawPassword,
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result map[string]interface{}
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, "Login successful", result["message"])
				assert.Equal(t, user.Username, result["username"])
				assert.NotNil(t, result["session_id"])
			},
		},
		{
			name: "wrong password",
			request: map[string]string{
				"username": user.Username,
				"password": "wrongpassword",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown username",
			request: map[string]string{
				"username": "ghost",
				"password": "whatever",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "missing password",
			request: map[string]string{
				"username": user.Username,
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, http.DefaultClient, ts.APIURL("/login"), tt.request)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_Login_WrongPasswordOpensNoSession(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, _ := testutil.NewUserBuilder().
		WithUsername("sessionless").
		Build(t, ts.DB.DB)

	resp := postJSON(t, http.DefaultClient, ts.APIURL("/login"), map[string]string{
		"username": user.Username,
		"password": "wrongpassword",
	})
	resp.Body.Close()

	var count int64
	ts.DB.DB.Model(&domain.UserSession{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Zero(t, count)
}

func TestAuthHandler_LogoutAndCheckSession(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, client := testutil.NewUserBuilder().
		WithUsername("flowuser").
		BuildAndAuthenticate(t, ts)

	// Logged in: check_session reports authenticated.
	resp, err := client.Get(ts.APIURL("/check_session"))
	require.NoError(t, err)
	var check map[string]interface{}
	testutil.AssertJSONResponse(t, resp, &check)
	resp.Body.Close()
	assert.Equal(t, true, check["authenticated"])
	assert.Equal(t, "flowuser", check["username"])

	// Logout closes the open session and clears the cookie.
	resp = postJSON(t, client, ts.APIURL("/logout"), nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	var open int64
	ts.DB.DB.Model(&domain.UserSession{}).Where("ended_at IS NULL").Count(&open)
	assert.Zero(t, open)

	// Anonymous again.
	resp, err = client.Get(ts.APIURL("/check_session"))
	require.NoError(t, err)
	check = nil
	testutil.AssertJSONResponse(t, resp, &check)
	resp.Body.Close()
	assert.Equal(t, false, check["authenticated"])
}

func TestAuthHandler_Logout_Anonymous(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := postJSON(t, http.DefaultClient, ts.APIURL("/logout"), nil)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)
}

func TestAuthHandler_CheckSession_StaleUser(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, client := testutil.NewUserBuilder().
		WithUsername("staleuser").
		WithPassword("secret1").
		BuildAndAuthenticate(t, ts)

	// Delete the account out from under the still-valid cookie.
	resp := doJSON(t, http.DefaultClient, http.MethodDelete, ts.APIURL("/user_auth"), map[string]string{
		"username": user.Username,
		"password": "secret1",
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	resp, err := client.Get(ts.APIURL("/check_session"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var check map[string]interface{}
	testutil.AssertJSONResponse(t, resp, &check)
	assert.Equal(t, false, check["authenticated"])

	// The stale cookie is not cleared on this path.
	for _, cookie := range resp.Cookies() {
		assert.NotEqual(t, middleware.SessionCookieName, cookie.Name)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("patchuser").
		Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
	}{
		{
			name: "wrong current password",
			request: map[string]string{
				"username":    user.Username,
				"password":    "wrongpassword",
				"newPassword": "newpassword1",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown user",
			request: map[string]string{
				"username":    "ghost",
				"password":    rawPassword,
				"newPassword": "newpassword1",
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "successful change",
			request: map[string]string{
				"username":    user.Username,
				"password":    rawPassword,
				"newPassword": "newpassword1",
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.DefaultClient, http.MethodPatch, ts.APIURL("/user_auth"), tt.request)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	// The new password is live.
	resp := postJSON(t, http.DefaultClient, ts.APIURL("/login"), map[string]string{
		"username": user.Username,
		"password": "newpassword1",
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()
}

func TestAuthHandler_DeleteAccount(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func() *domain.User
		expectedStatus int
	}{
		{
			name: "missing fields",
			request: map[string]string{
				"username": "whoever",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown user",
			request: map[string]string{
				"username": "ghost",
				"password": "whatever",
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "wrong password",
			request: map[string]string{
				"username": "deleteme",
				"password": "wrongpassword",
			},
			setup: func() *domain.User {
				user, _ := testutil.NewUserBuilder().
					WithUsername("deleteme").
					Build(t, ts.DB.DB)
				return user
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "successful delete",
			request: map[string]string{
				"username": "deleteme",
				"password": "testpassword123",
			},
			setup: func() *domain.User {
				user, _ := testutil.NewUserBuilder().
					WithUsername("deleteme").
					WithPassword("testpassword123").
					Build(t, ts.DB.DB)
				return user
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := doJSON(t, http.DefaultClient, http.MethodDelete, ts.APIURL("/user_auth"), tt.request)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
