package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Login authenticates through the web login flow. verificationCode is only
// used when the account has two-factor authentication enabled.
func (c *Client) Login(ctx context.Context, username, password, verificationCode string) (*LoginResult, error) {
	c.Username = username
	c.Password = password

	if c.IsLoggedIn() {
		return &LoginResult{
			Success:  true,
			UserID:   c.UserID(),
			Username: c.Username,
		}, nil
	}

	if err := c.fetchInitialCookies(ctx); err != nil {
		return nil, fmt.Errorf("failed to get initial cookies: %w", err)
	}

	result, err := c.webLogin(ctx, username, password)
	if err != nil {
		if result != nil && result.TwoFactorRequired && verificationCode != "" {
			return c.webTwoFactorLogin(ctx, username, verificationCode, result.TwoFactorInfo)
		}
		return result, err
	}

	return result, nil
}

// fetchInitialCookies gets CSRF token and initial cookies from Instagram
func (c *Client) fetchInitialCookies(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.webBaseURL+"accounts/login/", nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", c.getWebUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	if _, _, err := c.do(req); err != nil {
		return err
	}

	if c.Cookies["csrftoken"] == "" {
		return errors.New("failed to get CSRF token")
	}

	c.log.Debug().Msg("got csrf token")
	return nil
}

// webLogin performs the actual web login
func (c *Client) webLogin(ctx context.Context, username, password string) (*LoginResult, error) {
	// version 0 is plaintext with a timestamp
	encPassword := fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", time.Now().Unix(), password)

	formData := url.Values{}
	formData.Set("username", username)
	formData.Set("enc_password", encPassword)
	formData.Set("queryParams", "{}")
	formData.Set("optIntoOneTap", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webBaseURL+"accounts/login/ajax/", strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, err
	}

	c.setWebHeaders(req, "accounts/login/")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	var loginResp WebLoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, c.handleAPIError(resp.StatusCode, &APIResponse{}, body)
		}
		return nil, fmt.Errorf("failed to parse login response: %w", err)
	}

	if loginResp.TwoFactorRequired {
		return &LoginResult{
			TwoFactorRequired: true,
			TwoFactorInfo: map[string]any{
				"two_factor_identifier": loginResp.TwoFactorInfo.TwoFactorIdentifier,
				"username":              loginResp.TwoFactorInfo.Username,
			},
		}, ErrTwoFactorRequired
	}

	if loginResp.CheckpointURL != "" || loginResp.ErrorType == "checkpoint_required" {
		return &LoginResult{
			ChallengeRequired: true,
			ChallengeInfo: map[string]any{
				"url": loginResp.CheckpointURL,
			},
		}, ErrChallengeRequired
	}

	if loginResp.Authenticated {
		return c.completeLogin(loginResp.UserID, username), nil
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}

	errMsg := loginResp.Message
	if errMsg == "" {
		errMsg = ErrBadCredentials.Message
	}
	errType := loginResp.ErrorType
	if errType == "" {
		errType = ErrBadCredentials.ErrorType
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: errMsg, ErrorType: errType}
	return &LoginResult{Error: apiErr}, apiErr
}

func (c *Client) webTwoFactorLogin(ctx context.Context, username, verificationCode string, twoFactorInfo map[string]any) (*LoginResult, error) {
	identifier, _ := twoFactorInfo["two_factor_identifier"].(string)

	formData := url.Values{}
	formData.Set("username", username)
	formData.Set("verificationCode", verificationCode)
	formData.Set("identifier", identifier)
	formData.Set("queryParams", "{}")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webBaseURL+"accounts/login/ajax/two_factor/", strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, err
	}

	c.setWebHeaders(req, "accounts/login/")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("two factor request failed: %w", err)
	}

	var loginResp WebLoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return nil, fmt.Errorf("failed to parse 2FA response: %w", err)
	}

	if loginResp.Authenticated {
		return c.completeLogin(loginResp.UserID, username), nil
	}

	msg := loginResp.Message
	if msg == "" {
		msg = "two factor verification failed"
	}
	errType := loginResp.ErrorType
	if errType == "" {
		errType = ErrTwoFactorRequired.ErrorType
	}
	return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, ErrorType: errType}
}

func (c *Client) completeLogin(userID, username string) *LoginResult {
	c.mu.Lock()
	if userID != "" {
		c.Cookies["ds_user_id"] = userID
	}
	c.LastLogin = time.Now().Unix()
	c.mu.Unlock()

	id, _ := strconv.ParseInt(userID, 10, 64)
	if id == 0 {
		id = c.UserID()
	}

	c.log.Debug().Int64("user_id", id).Msg("logged in")

	return &LoginResult{
		Success:  true,
		UserID:   id,
		Username: username,
	}
}
