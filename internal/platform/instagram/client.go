package instagram

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/platform/instagram/session"
	"github.com/PiotrWarzachowski/go-instagram-publisher/internal/video"
)

func NewClient(opts ...Option) *Client {
	c := &Client{
		DeviceSettings:    session.Default(),
		Country:           "US",
		CountryCode:       1,
		Locale:            "en_US",
		TimezoneOffset:    -14400, // -4 hours
		BloksVersioningID: IGBloksVersionID,
		AuthorizationData: make(map[string]any),
		Cookies:           make(map[string]string),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiBaseURL:   IGAPIBaseURL,
		webBaseURL:   IGWebBaseURL,
		pollInterval: 15 * time.Second,
		prober:       video.Tools{},
		log:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		hc := *c.httpClient
		hc.Jar, _ = cookiejar.New(nil)
		c.httpClient = &hc
	}

	c.initUUIDs()
	c.setUserAgent()

	return c
}

// initUUIDs generates all required UUIDs
func (c *Client) initUUIDs() {
	c.PhoneID = uuid.New().String()
	c.UUID = uuid.New().String()
	c.ClientSessionID = uuid.New().String()
	c.AdvertisingID = uuid.New().String()
	c.AndroidDeviceID = c.generateAndroidDeviceID()
	c.RequestID = uuid.New().String()
	c.TraySessionID = uuid.New().String()
}

// generateAndroidDeviceID generates Android device ID format
func (c *Client) generateAndroidDeviceID() string {
	timestamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	hash := sha256.Sum256([]byte(timestamp))
	return "android-" + hex.EncodeToString(hash[:])[:16]
}

func (c *Client) setUserAgent() {
	c.UserAgent = fmt.Sprintf(
		"Instagram %s Android (%d/%s; %s; %s; %s; %s; %s; %s; %s)",
		c.DeviceSettings.AppVersion,
		c.DeviceSettings.AndroidVersion,
		c.DeviceSettings.AndroidRelease,
		c.DeviceSettings.DPI,
		c.DeviceSettings.Resolution,
		c.DeviceSettings.Manufacturer,
		c.DeviceSettings.Device,
		c.DeviceSettings.Model,
		c.DeviceSettings.CPU,
		c.Locale,
	)
}

// UserID returns the user ID from cookies or authorization data
func (c *Client) UserID() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if userID, ok := c.Cookies["ds_user_id"]; ok {
		if id, err := strconv.ParseInt(userID, 10, 64); err == nil {
			return id
		}
	}

	if userID, ok := c.AuthorizationData["ds_user_id"]; ok {
		switch v := userID.(type) {
		case string:
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				return id
			}
		case float64:
			return int64(v)
		case int64:
			return v
		}
	}

	return 0
}

// GetSessionID returns the current session ID
func (c *Client) GetSessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.SessionID != "" {
		return c.SessionID
	}

	if sid, ok := c.Cookies["sessionid"]; ok {
		return sid
	}

	if sid, ok := c.AuthorizationData["sessionid"].(string); ok {
		return sid
	}

	return ""
}

// CSRFToken returns or generates a CSRF token
func (c *Client) CSRFToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.csrfToken != "" {
		return c.csrfToken
	}

	if token, ok := c.Cookies["csrftoken"]; ok {
		c.csrfToken = token
		return token
	}

	buf := make([]byte, 32)
	rand.Read(buf)
	c.csrfToken = hex.EncodeToString(buf)
	return c.csrfToken
}

// IsLoggedIn checks if the client has a user and a session
func (c *Client) IsLoggedIn() bool {
	return c.UserID() != 0 && c.GetSessionID() != ""
}

// GetSettings returns the session blob. Callers should treat it as opaque
// and hand it back to SetSettings unchanged.
func (c *Client) GetSettings() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cookies := make(map[string]any, len(c.Cookies))
	for k, v := range c.Cookies {
		cookies[k] = v
	}

	return map[string]any{
		"uuids": map[string]any{
			"phone_id":          c.PhoneID,
			"uuid":              c.UUID,
			"client_session_id": c.ClientSessionID,
			"advertising_id":    c.AdvertisingID,
			"android_device_id": c.AndroidDeviceID,
			"request_id":        c.RequestID,
			"tray_session_id":   c.TraySessionID,
		},
		"mid":                c.Mid,
		"ig_u_rur":           c.IgURur,
		"ig_www_claim":       c.IgWwwClaim,
		"authorization_data": c.AuthorizationData,
		"cookies":            cookies,
		"last_login":         c.LastLogin,
		"device_settings":    c.DeviceSettings.ToMap(),
		"user_agent":         c.UserAgent,
		"country":            c.Country,
		"country_code":       c.CountryCode,
		"locale":             c.Locale,
		"timezone_offset":    c.TimezoneOffset,
		"username":           c.Username,
	}
}

// SetSettings restores a session blob produced by GetSettings, either
// directly or after a JSON round trip.
func (c *Client) SetSettings(settings map[string]any) error {
	if settings == nil {
		return fmt.Errorf("empty session settings")
	}

	c.mu.Lock()

	if uuids, ok := settings["uuids"].(map[string]any); ok {
		setString(uuids, "phone_id", &c.PhoneID)
		setString(uuids, "uuid", &c.UUID)
		setString(uuids, "client_session_id", &c.ClientSessionID)
		setString(uuids, "advertising_id", &c.AdvertisingID)
		setString(uuids, "android_device_id", &c.AndroidDeviceID)
		setString(uuids, "request_id", &c.RequestID)
		setString(uuids, "tray_session_id", &c.TraySessionID)
	}

	setString(settings, "mid", &c.Mid)
	setString(settings, "ig_u_rur", &c.IgURur)
	setString(settings, "ig_www_claim", &c.IgWwwClaim)
	setString(settings, "user_agent", &c.UserAgent)
	setString(settings, "country", &c.Country)
	setString(settings, "locale", &c.Locale)
	setString(settings, "username", &c.Username)

	if v, ok := settings["authorization_data"].(map[string]any); ok {
		c.AuthorizationData = v
	}
	if v, ok := settings["cookies"].(map[string]any); ok {
		c.Cookies = make(map[string]string, len(v))
		for key, val := range v {
			if s, ok := val.(string); ok {
				c.Cookies[key] = s
			}
		}
	}
	if v, ok := asInt64(settings["last_login"]); ok {
		c.LastLogin = v
	}
	if v, ok := asInt64(settings["country_code"]); ok {
		c.CountryCode = int(v)
	}
	if v, ok := asInt64(settings["timezone_offset"]); ok {
		c.TimezoneOffset = int(v)
	}
	if ds, ok := settings["device_settings"].(map[string]any); ok {
		c.DeviceSettings = session.FromMap(ds)
	}

	c.SessionID = c.Cookies["sessionid"]
	c.csrfToken = ""

	c.mu.Unlock()

	c.restoreCookies()

	return nil
}

// restoreCookies loads the stored cookies into the HTTP client jar for
// both hosts the client talks to.
func (c *Client) restoreCookies() {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cookies := make([]*http.Cookie, 0, len(c.Cookies))
	for name, value := range c.Cookies {
		cookies = append(cookies, &http.Cookie{
			Name:  name,
			Value: value,
			Path:  "/",
		})
	}

	for _, base := range []string{c.apiBaseURL, c.webBaseURL} {
		if u, err := url.Parse(base); err == nil {
			c.httpClient.Jar.SetCookies(u, cookies)
		}
	}
}

func (c *Client) setMobileHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("X-IG-App-ID", IGAppID)
	req.Header.Set("X-IG-Capabilities", "3brTvw==")
	req.Header.Set("X-IG-Connection-Type", "WIFI")
	req.Header.Set("X-IG-App-Locale", c.Locale)
	req.Header.Set("X-Bloks-Version-Id", c.BloksVersioningID)
	req.Header.Set("X-CSRFToken", c.CSRFToken())
	req.Header.Set("Accept-Language", "en-US")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.IgWwwClaim != "" {
		req.Header.Set("X-IG-WWW-Claim", c.IgWwwClaim)
	}
}

func (c *Client) setWebHeaders(req *http.Request, referer string) {
	req.Header.Set("User-Agent", c.getWebUserAgent())
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("X-CSRFToken", c.CSRFToken())
	req.Header.Set("X-IG-App-ID", IGWebAppID)
	req.Header.Set("X-ASBD-ID", "198387")
	req.Header.Set("X-IG-WWW-Claim", c.wwwClaim())
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Web-Device-Id", c.UUID)
	req.Header.Set("Origin", trimSlash(c.webBaseURL))
	req.Header.Set("Referer", c.webBaseURL+referer)
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
}

func (c *Client) wwwClaim() string {
	if c.IgWwwClaim == "" {
		return "0"
	}
	return c.IgWwwClaim
}

func (c *Client) getWebUserAgent() string {
	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
}

func setString(m map[string]any, key string, dst *string) {
	if v, ok := m[key].(string); ok {
		*dst = v
	}
}

// asInt64 accepts the numeric forms a settings value takes before and
// after a JSON round trip.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func trimSlash(s string) string {
	if len(s) > 0 && s[len(s)-1] == '/' {
		return s[:len(s)-1]
	}
	return s
}
