package post

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
)

type fakeClient struct {
	settings   map[string]any
	ids        map[string]string
	venues     []instagram.Location
	uploadErr  error
	commentErr error

	uploads     int
	gotPath     string
	gotOpts     instagram.PhotoOptions
	commentedOn string
	commentText string
}

func (f *fakeClient) SetSettings(settings map[string]any) error {
	f.settings = settings
	return nil
}

func (f *fakeClient) UserIDFromUsername(_ context.Context, username string) (string, error) {
	if id, ok := f.ids[username]; ok {
		return id, nil
	}
	return "", errors.New("user not found")
}

func (f *fakeClient) SearchLocation(_ context.Context, query string) ([]instagram.Location, error) {
	return f.venues, nil
}

func (f *fakeClient) UploadPhoto(_ context.Context, path string, opts instagram.PhotoOptions, _ instagram.ProgressReporter) (*instagram.Media, error) {
	f.uploads++
	f.gotPath, f.gotOpts = path, opts
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &instagram.Media{ID: "3001_42", Code: "CxYz", PK: "3001"}, nil
}

func (f *fakeClient) Comment(_ context.Context, mediaID, text string) (*instagram.Comment, error) {
	f.commentedOn, f.commentText = mediaID, text
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	return &instagram.Comment{ID: "1", Text: text}, nil
}

func writeSession(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const validSession = `{"cookies":{"cookies":{"sessionid":"sess-1","ds_user_id":"42"}}}`

func runPost(t *testing.T, fake *fakeClient, args ...string) map[string]any {
	t.Helper()
	return runPostWith(t, fake, args...)
}

func runPostWith(t *testing.T, client Publisher, args ...string) map[string]any {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewCommand(func(*bootstrap.Env) Publisher { return client })
	cmd.Writer = &out
	cmd.ErrWriter = &errOut

	require.NoError(t, cmd.Run(context.Background(), append([]string{"post"}, args...)))
	require.Equal(t, 1, strings.Count(out.String(), "\n"), "stdout must be one JSON line: %q", out.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	return got
}

func TestPostSuccess(t *testing.T) {
	fake := &fakeClient{
		ids:    map[string]string{"bob": "1001", "carol": "1002"},
		venues: []instagram.Location{{Name: "Central Park"}, {Name: "Central Park Zoo"}},
	}
	session := writeSession(t, validSession)

	got := runPost(t, fake,
		"--tagged-users", "bob, carol,,",
		"--location", "Central Park",
		"--hide-like-count",
		"--first-comment", "first!",
		session, "photo.jpg", "hello world",
	)

	assert.Equal(t, map[string]any{"success": true, "mediaId": "3001_42", "code": "CxYz"}, got)

	assert.Equal(t, map[string]any{"sessionid": "sess-1", "ds_user_id": "42"}, fake.settings["cookies"])
	assert.Equal(t, "photo.jpg", fake.gotPath)
	assert.Equal(t, "hello world", fake.gotOpts.Caption)
	assert.True(t, fake.gotOpts.DisableLikes)
	assert.False(t, fake.gotOpts.DisableComments)
	assert.Equal(t, []instagram.Usertag{
		{UserID: "1001", X: 0.5, Y: 0.5},
		{UserID: "1002", X: 0.5, Y: 0.5},
	}, fake.gotOpts.Usertags)
	require.NotNil(t, fake.gotOpts.Location)
	assert.Equal(t, "Central Park", fake.gotOpts.Location.Name)

	assert.Equal(t, "3001_42", fake.commentedOn)
	assert.Equal(t, "first!", fake.commentText)
}

func TestPostSkipsUnresolvableTaggedUser(t *testing.T) {
	fake := &fakeClient{ids: map[string]string{"bob": "1001"}}

	got := runPost(t, fake, "--tagged-users", "bob,ghost", writeSession(t, validSession), "photo.jpg", "cap")

	assert.Equal(t, true, got["success"])
	assert.Equal(t, []instagram.Usertag{{UserID: "1001", X: 0.5, Y: 0.5}}, fake.gotOpts.Usertags)
}

func TestPostWithoutOptionalFlags(t *testing.T) {
	fake := &fakeClient{}

	got := runPost(t, fake, writeSession(t, validSession), "photo.jpg", "cap")

	assert.Equal(t, true, got["success"])
	assert.Empty(t, fake.gotOpts.Usertags)
	assert.Nil(t, fake.gotOpts.Location)
	assert.False(t, fake.gotOpts.DisableLikes)
	assert.Empty(t, fake.commentedOn)
}

func TestPostLocationNotFound(t *testing.T) {
	fake := &fakeClient{}

	got := runPost(t, fake, "--location", "Nowhere", writeSession(t, validSession), "photo.jpg", "cap")

	assert.Equal(t, true, got["success"])
	assert.Nil(t, fake.gotOpts.Location)
}

func TestPostSessionWithoutCookies(t *testing.T) {
	fake := &fakeClient{}

	got := runPost(t, fake, writeSession(t, `{"username":"alice"}`), "photo.jpg", "cap")

	assert.Equal(t, false, got["success"])
	assert.Contains(t, got["error"], "no cookies")
	assert.Equal(t, "validation", got["errorType"])
	assert.Zero(t, fake.uploads)
}

func TestPostMissingArguments(t *testing.T) {
	got := runPost(t, &fakeClient{}, "session.json", "photo.jpg")

	assert.Equal(t, false, got["success"])
	assert.Equal(t, "validation", got["errorType"])
}

func TestPostUploadFailure(t *testing.T) {
	fake := &fakeClient{uploadErr: instagram.ErrRateLimited}

	got := runPost(t, fake, writeSession(t, validSession), "photo.jpg", "cap")

	assert.Equal(t, false, got["success"])
	assert.Equal(t, "network", got["errorType"])
}

func TestPostUnreadablePhoto(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an image"), 0600))

	tests := []struct {
		name  string
		photo string
		msg   string
	}{
		{"missing", filepath.Join(dir, "missing.jpg"), "failed to open photo"},
		{"corrupt", corrupt, "failed to read image corrupt.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runPostWith(t, instagram.NewClient(), writeSession(t, validSession), tt.photo, "cap")

			assert.Equal(t, false, got["success"])
			assert.Contains(t, got["error"], tt.msg)
			assert.Equal(t, "validation", got["errorType"])
		})
	}
}

func TestPostCommentFailureIsTotalFailure(t *testing.T) {
	fake := &fakeClient{commentErr: errors.New("comments disabled")}

	got := runPost(t, fake, "--first-comment", "hi", writeSession(t, validSession), "photo.jpg", "cap")

	assert.Equal(t, false, got["success"])
	assert.Contains(t, got["error"], "failed to add first comment")
	assert.NotContains(t, got, "mediaId")
	assert.Equal(t, 1, fake.uploads)
}

// Cookies printed by login, written unmodified under "cookies", must be
// accepted as-is.
func TestPostAcceptsLoginCookies(t *testing.T) {
	loginOutput := `{"success":true,"user_id":"42","username":"alice","cookies":{"uuids":{"uuid":"u-1"},"cookies":{"sessionid":"s"},"last_login":1700000000,"device_settings":{"android_version":26}}}`

	var printed struct {
		Cookies json.RawMessage `json:"cookies"`
	}
	require.NoError(t, json.Unmarshal([]byte(loginOutput), &printed))

	session := writeSession(t, `{"cookies":`+string(printed.Cookies)+`}`)
	fake := &fakeClient{}

	got := runPost(t, fake, session, "photo.jpg", "cap")
	require.Equal(t, true, got["success"])

	var want map[string]any
	require.NoError(t, json.Unmarshal(printed.Cookies, &want))
	assert.Equal(t, want, fake.settings)
}
