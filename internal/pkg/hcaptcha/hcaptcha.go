package hcaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bewear-pt/storefront/internal/pkg/env"
)

const defaultVerifyURL = "https://hcaptcha.com/siteverify"

type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks registration form tokens. A verifier without secret is
// disabled and accepts every request, which is what local setups use.
type Verifier struct {
	SiteKey   string
	Secret    string
	VerifyURL string
	Client    *http.Client
}

// FromEnv reads HCAPTCHA_SITEKEY and HCAPTCHA_SECRET.
func FromEnv() *Verifier {
	return &Verifier{
		SiteKey:   env.GetEnv("HCAPTCHA_SITEKEY", ""),
		Secret:    env.GetEnv("HCAPTCHA_SECRET", ""),
		VerifyURL: defaultVerifyURL,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *Verifier) Enabled() bool {
	return v != nil && v.Secret != ""
}

func (v *Verifier) Verify(ctx context.Context, token string) error {
	if !v.Enabled() {
		return nil
	}
	if token == "" {
		return errors.New("hCaptcha token is empty")
	}

	form := url.Values{
		"secret":   {v.Secret},
		"response": {token},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to hCaptcha API: %w", err)
	}
	defer resp.Body.Close()

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode hCaptcha API response: %w", err)
	}

	if !response.Success {
		if len(response.ErrorCodes) > 0 {
			return fmt.Errorf("hCaptcha validation failed: %s", strings.Join(response.ErrorCodes, ", "))
		}
		return errors.New("hCaptcha validation failed")
	}
	return nil
}
