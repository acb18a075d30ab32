package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/bootstrap"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/platform/instagram"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/sessionfile"
)

type fakeClient struct {
	loginErr  error
	infoErr   error
	userID    int64
	settings  map[string]any
	gotUser   string
	gotPass   string
	gotCode   string
	infoCalls int
}

func (f *fakeClient) Login(_ context.Context, username, password, code string) (*instagram.LoginResult, error) {
	f.gotUser, f.gotPass, f.gotCode = username, password, code
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &instagram.LoginResult{Success: true, UserID: f.userID, Username: username}, nil
}

func (f *fakeClient) UserID() int64 { return f.userID }

func (f *fakeClient) UserInfo(_ context.Context, userID int64) (*instagram.User, error) {
	f.infoCalls++
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return &instagram.User{
		Username:      "alice",
		FullName:      "Alice A",
		ProfilePicURL: "https://cdn.example/alice.jpg",
	}, nil
}

func (f *fakeClient) GetSettings() map[string]any { return f.settings }

func newFake() *fakeClient {
	return &fakeClient{
		userID: 1234567890123,
		settings: map[string]any{
			"cookies":    map[string]any{"sessionid": "sess-1", "ds_user_id": "1234567890123"},
			"uuids":      map[string]any{"uuid": "u-1"},
			"last_login": float64(1700000000),
		},
	}
}

func runLogin(t *testing.T, fake *fakeClient, stdin string, args ...string) map[string]any {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewCommand(func(*bootstrap.Env) Authenticator { return fake })
	cmd.Writer = &out
	cmd.ErrWriter = &errOut
	cmd.Reader = strings.NewReader(stdin)

	require.NoError(t, cmd.Run(context.Background(), append([]string{"login"}, args...)))
	require.Equal(t, 1, strings.Count(out.String(), "\n"), "stdout must be one JSON line: %q", out.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	return got
}

func TestLoginSuccess(t *testing.T) {
	fake := newFake()

	got := runLogin(t, fake, "", "alice", "secret", "unused-session")

	assert.Equal(t, true, got["success"])
	assert.Equal(t, "1234567890123", got["user_id"])
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "Alice A", got["full_name"])
	assert.Equal(t, "https://cdn.example/alice.jpg", got["profile_pic_url"])
	assert.Equal(t, fake.settings, got["cookies"])

	assert.Equal(t, "alice", fake.gotUser)
	assert.Equal(t, "secret", fake.gotPass)
	assert.Equal(t, 1, fake.infoCalls)
}

func TestLoginMissingArguments(t *testing.T) {
	for _, args := range [][]string{{"alice"}, {"alice", "secret"}} {
		fake := newFake()

		got := runLogin(t, fake, "", args...)

		assert.Equal(t, false, got["success"], args)
		assert.Equal(t, "Missing arguments", got["error"], args)
		assert.Equal(t, "validation", got["errorType"], args)
		assert.Empty(t, fake.gotUser, args)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	fake := newFake()
	fake.loginErr = instagram.ErrBadCredentials

	got := runLogin(t, fake, "", "alice", "wrong", "x")

	assert.Equal(t, false, got["success"])
	assert.NotEmpty(t, got["error"])
	assert.Equal(t, "auth", got["errorType"])
	assert.Zero(t, fake.infoCalls)
}

func TestLoginProfileFailure(t *testing.T) {
	fake := newFake()
	fake.infoErr = errors.New("boom")

	got := runLogin(t, fake, "", "alice", "secret", "x")

	assert.Equal(t, false, got["success"])
	assert.Contains(t, got["error"], "failed to fetch profile")
	assert.Equal(t, "unknown", got["errorType"])
}

func TestLoginTwoFactorFlag(t *testing.T) {
	fake := newFake()

	got := runLogin(t, fake, "", "--2fa", "654321", "alice", "secret", "x")

	assert.Equal(t, true, got["success"])
	assert.Equal(t, "654321", fake.gotCode)
}

func TestLoginPasswordFromStdin(t *testing.T) {
	fake := newFake()

	got := runLogin(t, fake, "from-stdin\n", "alice", "-", "x")

	assert.Equal(t, true, got["success"])
	assert.Equal(t, "from-stdin", fake.gotPass)
}

func TestLoginSessionOut(t *testing.T) {
	fake := newFake()
	path := filepath.Join(t.TempDir(), "sessions", "alice.json")

	got := runLogin(t, fake, "", "--session-out", path, "alice", "secret", "x")
	require.Equal(t, true, got["success"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := sessionfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, got["cookies"], loaded)
}

func TestLoginUsageError(t *testing.T) {
	got := runLogin(t, newFake(), "", "--no-such-flag", "alice", "secret", "x")

	assert.Equal(t, false, got["success"])
	assert.Equal(t, "validation", got["errorType"])
}
