package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/result"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/video"
)

// UploadPhotoStory publishes a JPEG or PNG as a story.
func (c *Client) UploadPhotoStory(ctx context.Context, path, caption string, pr ProgressReporter) (*Media, error) {
	if !c.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	width, height, err := photoSize(path)
	if err != nil {
		return nil, err
	}

	uploadID := newUploadID()

	if err := c.uploadPhotoBytes(ctx, path, uploadID, "create/story/", pr); err != nil {
		return nil, fmt.Errorf("photo upload failed: %w", err)
	}

	reportProgress(pr, ProgressReport{
		Type:    ProgressStory,
		Step:    "CONFIG",
		Current: 1,
		Total:   1,
		Message: "Configuring story",
	})

	data := c.storyForm(uploadID, caption)
	data.Set("source_type", "4")
	data.Set("extra", fmt.Sprintf(`{"source_width":%d,"source_height":%d}`, width, height))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webBaseURL+"api/v1/media/configure_to_story/", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	c.setWebHeaders(req, "create/story/")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp configureResponse
	if err := c.getJSON(req, &resp); err != nil {
		return nil, fmt.Errorf("configure story failed: %w", err)
	}

	media, err := resp.media()
	if err != nil {
		return nil, err
	}

	c.log.Debug().Str("media_id", media.ID).Msg("photo story posted")
	return media, nil
}

// UploadVideoStory publishes an MP4 or MOV as a story. The video bytes and a
// cover frame are uploaded in parallel under one upload id, then configure
// is retried until Instagram finishes transcoding or ctx expires.
func (c *Client) UploadVideoStory(ctx context.Context, path, caption string, pr ProgressReporter) (*Media, error) {
	if !c.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	if _, err := os.Stat(path); err != nil {
		return nil, result.InvalidWrap(err, "failed to open video")
	}

	reportProgress(pr, ProgressReport{
		Type:    ProgressStory,
		Step:    "PREPARE",
		Message: "Inspecting video",
	})

	info, err := c.prober.Probe(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("failed to inspect video: %w", ctx.Err())
		}
		return nil, result.InvalidWrap(err, "failed to inspect video")
	}

	tmpDir, err := os.MkdirTemp("", "igpub-story-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	info.Thumbnail, err = c.prober.Cover(ctx, path, tmpDir)
	if err != nil {
		return nil, fmt.Errorf("failed to extract cover: %w", err)
	}

	uploadID := newUploadID()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.uploadVideoBytes(gctx, info, uploadID, pr)
	})
	g.Go(func() error {
		if err := c.uploadPhotoBytes(gctx, info.Thumbnail, uploadID, "create/story/", nil); err != nil {
			return fmt.Errorf("cover upload failed: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reportProgress(pr, ProgressReport{
		Type:    ProgressStory,
		Step:    "CONFIG",
		Current: 1,
		Total:   1,
		Message: "Configuring story",
	})

	media, err := c.configureVideoStory(ctx, uploadID, caption, info)
	if err != nil {
		return nil, err
	}

	c.log.Debug().Str("media_id", media.ID).Msg("video story posted")
	return media, nil
}

func (c *Client) uploadVideoBytes(ctx context.Context, info *video.Info, uploadID string, pr ProgressReporter) error {
	waterfallID := uuid.New().String()
	uploadName := fmt.Sprintf("%s_0_%d", uploadID, rand.Int63n(9000000000)+1000000000)

	paramsJSON, _ := json.Marshal(map[string]string{
		"retry_context":            `{"num_step_auto_retry":0,"num_reupload":0,"num_step_manual_retry":0}`,
		"media_type":               "2",
		"upload_id":                uploadID,
		"upload_media_duration_ms": strconv.Itoa(int(info.Duration * 1000)),
		"upload_media_width":       strconv.Itoa(info.Width),
		"upload_media_height":      strconv.Itoa(info.Height),
		"for_direct_story":         "0",
		"extract_cover_frame":      "1",
		"content_tags":             "has-overlay",
	})

	endpoint := c.apiBaseURL + "rupload_igvideo/" + uploadName

	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.setMobileHeaders(getReq)
	getReq.Header.Set("X-Instagram-Rupload-Params", string(paramsJSON))
	getReq.Header.Set("X_FB_VIDEO_WATERFALL_ID", waterfallID)

	if err := c.getJSON(getReq, nil); err != nil {
		return fmt.Errorf("video handshake failed: %w", err)
	}

	file, err := os.Open(info.Path)
	if err != nil {
		return result.InvalidWrap(err, "failed to open video file")
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	reportProgress(pr, ProgressReport{Type: ProgressStory, Step: "INIT", Total: 1, TotalBytes: size})

	body := &progressReader{
		reader: file,
		total:  size,
		onProg: func(read, total int64) {
			reportProgress(pr, ProgressReport{
				Type:       ProgressStory,
				Step:       "UPLOAD",
				Current:    1,
				Total:      1,
				BytesSent:  read,
				TotalBytes: total,
			})
		},
	}

	postReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	postReq.ContentLength = size

	c.setMobileHeaders(postReq)
	postReq.Header.Set("X-Entity-Name", uploadName)
	postReq.Header.Set("X-Entity-Length", strconv.FormatInt(size, 10))
	postReq.Header.Set("X-Entity-Type", "video/mp4")
	postReq.Header.Set("Offset", "0")
	postReq.Header.Set("Content-Type", "application/octet-stream")
	postReq.Header.Set("X-Instagram-Rupload-Params", string(paramsJSON))
	postReq.Header.Set("X_FB_VIDEO_WATERFALL_ID", waterfallID)

	if err := c.getJSON(postReq, nil); err != nil {
		return fmt.Errorf("video upload failed: %w", err)
	}
	return nil
}

func (c *Client) configureVideoStory(ctx context.Context, uploadID, caption string, info *video.Info) (*Media, error) {
	data := c.storyForm(uploadID, caption)
	data.Set("source_type", "3")
	data.Set("creation_surface", "camera")
	data.Set("original_media_type", "video")
	data.Set("length", strconv.FormatFloat(info.Duration, 'f', 3, 64))
	data.Set("extra", fmt.Sprintf(`{"source_width":%d,"source_height":%d}`, info.Width, info.Height))

	deviceInfo, _ := json.Marshal(map[string]string{
		"manufacturer":        c.DeviceSettings.Manufacturer,
		"model":               c.DeviceSettings.Model,
		"android_version":     strconv.Itoa(c.DeviceSettings.AndroidVersion),
		"android_sdk_version": strconv.Itoa(c.DeviceSettings.AndroidVersion),
	})
	data.Set("device", string(deviceInfo))

	clips, _ := json.Marshal([]map[string]any{
		{"length": info.Duration, "source_type": "3"},
	})
	data.Set("clips", string(clips))

	encoded := data.Encode()
	endpoint := c.apiBaseURL + "api/v1/media/configure_to_story/?video=1"

	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		c.setMobileHeaders(req)

		resp, body, err := c.do(req)
		if err != nil {
			return nil, fmt.Errorf("configure story failed: %w", err)
		}

		if transcodePending(body) {
			c.log.Debug().Int("attempt", attempt).Dur("wait", c.pollInterval).Msg("transcode not finished")

			timer := time.NewTimer(c.pollInterval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("configure story: %w", ctx.Err())
			case <-timer.C:
			}
			continue
		}

		var out configureResponse
		if err := c.decode(resp, body, &out); err != nil {
			return nil, fmt.Errorf("configure story failed: %w", err)
		}
		return out.media()
	}
}

func (c *Client) storyForm(uploadID, caption string) url.Values {
	data := url.Values{}
	data.Set("_uid", strconv.FormatInt(c.UserID(), 10))
	data.Set("_uuid", c.UUID)
	data.Set("device_id", c.AndroidDeviceID)
	data.Set("upload_id", uploadID)
	data.Set("configure_mode", "1")
	data.Set("client_timestamp", strconv.FormatInt(time.Now().Unix(), 10))
	data.Set("camera_session_id", c.UUID)
	if caption != "" {
		data.Set("caption", caption)
	}
	return data
}

func transcodePending(body []byte) bool {
	s := string(body)
	return strings.Contains(s, "transcode_not_finished") ||
		strings.Contains(s, "Transcode not finished yet")
}
