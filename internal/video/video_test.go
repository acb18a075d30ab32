package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeOutput(t *testing.T) {
	out := "width=1080\nheight=1920\nduration=12.480000\n"

	info, err := parseProbeOutput(out)
	require.NoError(t, err)
	assert.Equal(t, 1080, info.Width)
	assert.Equal(t, 1920, info.Height)
	assert.InDelta(t, 12.48, info.Duration, 0.0001)
}

func TestParseProbeOutputMissingStream(t *testing.T) {
	_, err := parseProbeOutput("duration=3.0\n")
	assert.ErrorContains(t, err, "no video stream")
}

func TestParseProbeOutputMissingDuration(t *testing.T) {
	_, err := parseProbeOutput("width=720\nheight=1280\nduration=N/A\n")
	assert.ErrorContains(t, err, "no duration")
}

func TestToolsDefaults(t *testing.T) {
	var tools Tools
	assert.Equal(t, "ffmpeg", tools.ffmpeg())
	assert.Equal(t, "ffprobe", tools.ffprobe())

	tools = Tools{FFmpeg: "/opt/ffmpeg", FFprobe: "/opt/ffprobe"}
	assert.Equal(t, "/opt/ffmpeg", tools.ffmpeg())
	assert.Equal(t, "/opt/ffprobe", tools.ffprobe())
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "error", lastLine("a\nb\nerror\n"))
	assert.Equal(t, "only", lastLine("only"))
}
