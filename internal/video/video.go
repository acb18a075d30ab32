package video

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Info describes a video file ready for upload.
type Info struct {
	Path      string
	Width     int
	Height    int
	Duration  float64
	Thumbnail string
}

// Tools runs ffprobe and ffmpeg. Empty paths fall back to the binaries on
// PATH.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

func (t Tools) ffmpeg() string {
	if t.FFmpeg == "" {
		return "ffmpeg"
	}
	return t.FFmpeg
}

func (t Tools) ffprobe() string {
	if t.FFprobe == "" {
		return "ffprobe"
	}
	return t.FFprobe
}

// Probe reads the first video stream's dimensions and the container
// duration.
func (t Tools) Probe(ctx context.Context, path string) (*Info, error) {
	cmd := exec.CommandContext(ctx, t.ffprobe(), "-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height:format=duration",
		"-of", "default=noprint_wrappers=1",
		path)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", filepath.Base(path), err)
	}

	info, err := parseProbeOutput(string(out))
	if err != nil {
		return nil, err
	}
	info.Path = path
	return info, nil
}

// parseProbeOutput reads ffprobe's key=value output.
func parseProbeOutput(out string) (*Info, error) {
	info := &Info{}

	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}

		switch key {
		case "width":
			info.Width, _ = strconv.Atoi(value)
		case "height":
			info.Height, _ = strconv.Atoi(value)
		case "duration":
			if d, err := strconv.ParseFloat(value, 64); err == nil {
				info.Duration = d
			}
		}
	}

	if info.Width == 0 || info.Height == 0 {
		return nil, fmt.Errorf("invalid ffprobe output: no video stream")
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("invalid ffprobe output: no duration")
	}

	return info, nil
}

// Cover extracts a single frame from path into dir and returns its path.
func (t Tools) Cover(ctx context.Context, path, dir string) (string, error) {
	thumbPath := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"_cover.jpg")

	cmd := exec.CommandContext(ctx, t.ffmpeg(), "-y",
		"-ss", "0.5",
		"-i", path,
		"-vframes", "1",
		"-q:v", "2",
		thumbPath)

	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("cover extraction failed: %w: %s", err, strings.TrimSpace(lastLine(string(out))))
	}

	return thumbPath, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
