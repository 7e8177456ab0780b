package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZaguanLabs/mailtl"
	"github.com/tidwall/gjson"
)

const (
	defaultGoogleBaseURL = "https://translate.googleapis.com"
	defaultGoogleTimeout = 15 * time.Second

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 1 << 20
)

// GoogleProvider implements Provider using the public Google Translate web
// endpoint, the same one browser extensions use. It needs no API key and
// is rate limited by Google; 429 answers are reported as retryable.
type GoogleProvider struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// GoogleConfig holds configuration for the Google provider.
type GoogleConfig struct {
	BaseURL    string        // Endpoint root (default: "https://translate.googleapis.com")
	Timeout    time.Duration // Per-request timeout (default: 15s)
	HTTPClient *http.Client  // Custom client; Timeout is ignored when set
}

// NewGoogleProvider creates a new Google provider.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultGoogleTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &GoogleProvider{
		httpClient: client,
		baseURL:    baseURL,
		userAgent:  mailtl.UserAgent(),
	}
}

// Translate translates each text with one request per text.
func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	source := req.SourceLang
	if source == "" {
		source = mailtl.DefaultSourceLang
	} else if source != mailtl.DefaultSourceLang {
		source = mailtl.BaseLang(source)
	}
	target := mailtl.BaseLang(req.TargetLang)

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		translated, err := p.translateOne(ctx, text, source, target)
		if err != nil {
			return nil, err
		}
		results[i] = translated
	}
	return results, nil
}

func (p *GoogleProvider) translateOne(ctx context.Context, text, source, target string) (string, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", source)
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("q", text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/translate_a/single?"+query.Encode(), nil)
	if err != nil {
		return "", &mailtl.ProviderError{Message: "building request", Cause: err}
	}
	httpReq.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", &mailtl.ProviderError{
			Message:   "Google Translate request failed",
			Cause:     err,
			Retryable: ctx.Err() == nil,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", &mailtl.ProviderError{Message: "reading response", Cause: err, Retryable: true}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &mailtl.ProviderError{
			Message:   fmt.Sprintf("Google Translate returned %d", resp.StatusCode),
			Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse joins the translated sentence chunks of a response
// shaped like [[["สวัสดี","Hello",null,null,10]],null,"en"].
func parseGoogleResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", &mailtl.ProviderError{Message: "invalid response format from Google Translate"}
	}

	sentences := gjson.GetBytes(body, "0")
	if !sentences.IsArray() {
		return "", &mailtl.ProviderError{Message: "response has no translation"}
	}

	var b strings.Builder
	sentences.ForEach(func(_, sentence gjson.Result) bool {
		b.WriteString(sentence.Get("0").String())
		return true
	})

	return sanitizeTranslation(b.String()), nil
}

// Verify GoogleProvider implements Provider
var _ Provider = (*GoogleProvider)(nil)
