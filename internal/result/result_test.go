package result

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authErr struct{}

func (authErr) Error() string { return "bad password" }
func (authErr) Kind() Kind    { return KindAuth }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", Invalid("Unsupported media type"), KindValidation},
		{"wrapped validation", fmt.Errorf("load: %w", InvalidWrap(errors.New("eof"), "bad session file")), KindValidation},
		{"classifier", fmt.Errorf("login failed: %w", authErr{}), KindAuth},
		{"deadline", fmt.Errorf("upload: %w", context.DeadlineExceeded), KindNetwork},
		{"url error", &url.Error{Op: "Post", URL: "https://i.instagram.com", Err: errors.New("connection refused")}, KindNetwork},
		{"op error", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, KindNetwork},
		{"dns error", &net.DNSError{Err: "no such host", Name: "i.instagram.com"}, KindNetwork},
		{"path error", fmt.Errorf("failed to open photo: %w", &fs.PathError{Op: "open", Path: "/x.jpg", Err: syscall.ENOENT}), KindValidation},
		{"bare errno", syscall.ENOENT, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassifyMissingFile(t *testing.T) {
	_, err := os.Open(filepath.Join(t.TempDir(), "missing.jpg"))
	require.Error(t, err)
	assert.Equal(t, KindValidation, Classify(fmt.Errorf("failed to open photo: %w", err)))
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "Missing arguments", Invalid("Missing arguments").Error())
	assert.Equal(t, "bad session file: eof", InvalidWrap(errors.New("eof"), "bad session file").Error())

	inner := errors.New("eof")
	assert.ErrorIs(t, InvalidWrap(inner, "x"), inner)
}

func TestWriteFailure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Fail(Invalid("Missing arguments"))))

	line := buf.String()
	assert.Equal(t, byte('\n'), line[len(line)-1])
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "Missing arguments", got["error"])
	assert.Equal(t, "validation", got["errorType"])
}

func TestWriteMedia(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Media{Success: true, MediaID: "1_2", Code: "abc"}))
	assert.JSONEq(t, `{"success":true,"mediaId":"1_2","code":"abc"}`, buf.String())
}

func TestFailNil(t *testing.T) {
	f := Fail(nil)
	assert.False(t, f.Success)
	assert.Equal(t, KindUnknown, f.ErrorType)
}
