package libretranslate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/resilience"
)

const (
	sourceLanguage = "tl"
	targetLanguage = "en"

	translateOperation = "libretranslate_translate"
)

type Options struct {
	APIKey string
	// RequestsPerSecond caps outbound calls. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	Resilience        *resilience.Executor
	HTTPClient        *http.Client
}

// Client translates Tagalog excuse text to English through a LibreTranslate-compatible endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	logger     *slog.Logger
}

func New(baseURL string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	executor := opts.Resilience
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig(), logger)
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(opts.APIKey),
		httpClient: httpClient,
		limiter:    limiter,
		executor:   executor,
		logger:     logger,
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// Translate returns the English rendering of text, or text itself when the service
// cannot produce one.
func (c *Client) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" || c.baseURL == "" {
		return text
	}

	translated, err := c.translate(ctx, text)
	if err != nil {
		c.logger.Warn("translation_fallback", "error", err, "chars", len(text))
		return text
	}
	return translated
}

func (c *Client) translate(ctx context.Context, text string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	request := translateRequest{
		Q:      text,
		Source: sourceLanguage,
		Target: targetLanguage,
		Format: "text",
		APIKey: c.apiKey,
	}

	var translated string
	err := c.executor.Execute(ctx, translateOperation, func(callCtx context.Context) error {
		response, err := c.post(callCtx, request)
		if err != nil {
			return err
		}
		translated = strings.TrimSpace(response.TranslatedText)
		if translated == "" {
			return errEmptyTranslation
		}
		return nil
	}, classifyTranslateError)
	if err != nil {
		return "", err
	}
	return translated, nil
}
