package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/result"
)

// UploadPhoto publishes a photo to the feed.
func (c *Client) UploadPhoto(ctx context.Context, path string, opts PhotoOptions, pr ProgressReporter) (*Media, error) {
	if !c.IsLoggedIn() {
		return nil, ErrNotLoggedIn
	}

	width, height, err := photoSize(path)
	if err != nil {
		return nil, err
	}

	uploadID := newUploadID()

	if err := c.uploadPhotoBytes(ctx, path, uploadID, "create/style/", pr); err != nil {
		return nil, fmt.Errorf("photo upload failed: %w", err)
	}

	reportProgress(pr, ProgressReport{
		Type:    ProgressMedia,
		Step:    "CONFIG",
		Current: 1,
		Total:   1,
		Message: "Configuring post",
	})

	data := url.Values{}
	data.Set("upload_id", uploadID)
	data.Set("caption", opts.Caption)
	data.Set("source_type", "library")
	data.Set("disable_comments", boolFlag(opts.DisableComments))
	data.Set("like_and_view_counts_disabled", boolFlag(opts.DisableLikes))
	data.Set("device_id", c.AndroidDeviceID)
	data.Set("_uuid", c.UUID)
	data.Set("_uid", strconv.FormatInt(c.UserID(), 10))
	data.Set("extra", fmt.Sprintf(`{"source_width":%d,"source_height":%d}`, width, height))

	if len(opts.Usertags) > 0 {
		tags, err := encodeUsertags(opts.Usertags)
		if err != nil {
			return nil, err
		}
		data.Set("usertags", tags)
	}

	if opts.Location != nil {
		loc, err := encodeLocation(opts.Location)
		if err != nil {
			return nil, err
		}
		data.Set("location", loc)
		data.Set("geotag_enabled", "1")
		data.Set("posting_latitude", strconv.FormatFloat(opts.Location.Lat, 'f', -1, 64))
		data.Set("posting_longitude", strconv.FormatFloat(opts.Location.Lng, 'f', -1, 64))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webBaseURL+"api/v1/media/configure/", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	c.setWebHeaders(req, "create/details/")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp configureResponse
	if err := c.getJSON(req, &resp); err != nil {
		return nil, fmt.Errorf("configure failed: %w", err)
	}

	media, err := resp.media()
	if err != nil {
		return nil, err
	}

	c.log.Debug().Str("media_id", media.ID).Str("code", media.Code).Msg("photo posted")
	return media, nil
}

// uploadPhotoBytes sends the raw image to the rupload endpoint under uploadID.
func (c *Client) uploadPhotoBytes(ctx context.Context, path, uploadID, referer string, pr ProgressReporter) error {
	file, err := os.Open(path)
	if err != nil {
		return result.InvalidWrap(err, "failed to open photo")
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	contentType := "image/jpeg"
	if strings.ToLower(filepath.Ext(path)) == ".png" {
		contentType = "image/png"
	}

	ruploadJSON, _ := json.Marshal(map[string]string{
		"upload_id":         uploadID,
		"media_type":        "1",
		"retry_context":     `{"num_step_auto_retry":0,"num_reupload":0,"num_step_manual_retry":0}`,
		"image_compression": `{"lib_name":"moz","lib_version":"3.1.m","quality":"80"}`,
	})

	entityName := fmt.Sprintf("%s_0_%d", uploadID, time.Now().Unix())

	reportProgress(pr, ProgressReport{Type: ProgressMedia, Step: "INIT", TotalBytes: size, Total: 1})

	body := &progressReader{
		reader: file,
		total:  size,
		onProg: func(read, total int64) {
			reportProgress(pr, ProgressReport{
				Type:       ProgressMedia,
				Step:       "UPLOAD",
				Current:    1,
				Total:      1,
				BytesSent:  read,
				TotalBytes: total,
			})
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webBaseURL+"rupload_igphoto/"+entityName, body)
	if err != nil {
		return err
	}
	req.ContentLength = size

	c.setWebHeaders(req, referer)
	req.Header.Set("X-Entity-Type", contentType)
	req.Header.Set("Offset", "0")
	req.Header.Set("X-Instagram-Rupload-Params", string(ruploadJSON))
	req.Header.Set("X-Entity-Name", entityName)
	req.Header.Set("X-Entity-Length", strconv.FormatInt(size, 10))
	req.Header.Set("Content-Type", contentType)

	return c.getJSON(req, nil)
}

func encodeUsertags(tags []Usertag) (string, error) {
	in := make([]map[string]any, 0, len(tags))
	for _, t := range tags {
		in = append(in, map[string]any{
			"user_id":  t.UserID,
			"position": []float64{t.X, t.Y},
		})
	}

	data, err := json.Marshal(map[string]any{"in": in})
	if err != nil {
		return "", fmt.Errorf("failed to encode usertags: %w", err)
	}
	return string(data), nil
}

func encodeLocation(loc *Location) (string, error) {
	data, err := json.Marshal(map[string]any{
		"name":               loc.Name,
		"address":            loc.Address,
		"lat":                loc.Lat,
		"lng":                loc.Lng,
		"external_source":    loc.Source,
		"facebook_places_id": loc.ExternalID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode location: %w", err)
	}
	return string(data), nil
}

// photoSize reads image dimensions without decoding the pixels.
func photoSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, result.InvalidWrap(err, "failed to open photo")
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, result.InvalidWrap(err, "failed to read image "+filepath.Base(path))
	}
	return cfg.Width, cfg.Height, nil
}

func newUploadID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
