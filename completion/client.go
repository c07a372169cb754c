// Package completion asks a chat-completion model to fill the blanks of a
// form.
//
// The client talks to any OpenAI compatible endpoint; by default Volcano
// Engine Ark serving a Doubao model. Failures never reach the caller as
// errors: every problem is logged and reported as a Result without values,
// which leaves the form's markers unfilled.
package completion

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	// DefaultModel is the Ark endpoint used when Config.Model is empty.
	DefaultModel = "doubao-seed-1-6-251015"
	// DefaultBaseURL is the Volcano Engine Ark API root.
	DefaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3/"
	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 60 * time.Second
	// DefaultTemperature keeps answers close to the profile.
	DefaultTemperature = 0.1
)

// Config selects the endpoint and model. An unset Temperature means
// DefaultTemperature; param.NewOpt(0.0) requests temperature 0.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature param.Opt[float64]
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if !c.Temperature.Valid() {
		c.Temperature = param.NewOpt(DefaultTemperature)
	}
	return c
}

// Client sends one completion request per form. It is safe for concurrent
// use.
type Client struct {
	openAI     openai.Client
	cfg        Config
	logger     *zap.Logger
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a Client for cfg. Zero fields of cfg take the package
// defaults. The SDK's retries are disabled: a failed request leaves the
// form unfilled instead of being repeated.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg.withDefaults(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(c.cfg.APIKey),
		option.WithBaseURL(c.cfg.BaseURL),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(c.cfg.Timeout),
	}
	if c.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(c.httpClient))
	}
	c.openAI = openai.NewClient(reqOpts...)
	return c
}

// Complete asks the model to fill the markers of formContext from profile.
func (c *Client) Complete(ctx context.Context, profile, formContext string) Result {
	log := c.logger.With(zap.String("model", c.cfg.Model))
	log.Info("requesting completion",
		zap.String("api_key", maskKey(c.cfg.APIKey)),
		zap.Int("api_key_length", utf8.RuneCountInString(c.cfg.APIKey)),
		zap.Int("profile_length", utf8.RuneCountInString(profile)),
		zap.Int("context_length", utf8.RuneCountInString(formContext)),
	)

	var (
		raw   *http.Response
		start = time.Now()
	)
	completion, err := c.openAI.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model: openai.ChatModel(c.cfg.Model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(BuildPrompt(profile, formContext)),
			},
			Temperature: c.cfg.Temperature,
		},
		option.WithResponseInto(&raw),
	)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			log.Warn("completion request rejected",
				zap.Int("status", apiErr.StatusCode),
				zap.String("body", excerpt(compact(apiErr.RawJSON()), 500)),
			)
		} else {
			log.Warn("completion request failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		}
		return Result{Status: Unavailable, Err: err}
	}

	fields := []zap.Field{zap.Duration("elapsed", time.Since(start))}
	if raw != nil {
		fields = append(fields, zap.Int("status", raw.StatusCode))
	}
	log.Info("completion received", append(fields, zap.Strings("response_keys", topLevelKeys(completion.RawJSON())))...)

	if len(completion.Choices) == 0 {
		log.Warn("completion has no choices")
		return Result{Status: Unavailable, Err: ErrNoChoices}
	}

	content := completion.Choices[0].Message.Content
	log.Debug("completion content", zap.String("content", excerpt(StripFences(content), 200)))

	res := ParseContent(content)
	if res.Status != Parsed {
		log.Warn("completion content unparseable", zap.Error(res.Err))
		return res
	}
	log.Info("completion parsed", zap.Strings("keys", res.Keys()))
	return res
}

// maskKey shows the first few runes of the API key so keys can be told
// apart in logs. Keys too short to mask safely are hidden entirely.
func maskKey(key string) string {
	const shown = 4
	if utf8.RuneCountInString(key) <= 2*shown {
		return "…"
	}
	r := []rune(key)
	return string(r[:shown]) + "…"
}

func topLevelKeys(raw string) []string {
	var keys []string
	gjson.Parse(raw).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}
