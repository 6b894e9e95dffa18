// Package translate calls the Bhashini (Dhruva) inference pipeline to translate
// text between two languages.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/deepraj21/bhashabandhu-hackathon/config"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidLanguageCode is returned before any request is made when either
// language code is not exactly two characters long.
var ErrInvalidLanguageCode = errors.New("invalid language codes")

var errMissingAPIKey = errors.New("translation api key is not configured")

// UpstreamError reports a failed call to the translation service or a
// response that does not have the expected shape.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// responseSchema is the part of the pipeline response Translate relies on.
const responseSchema = `{
	"type": "object",
	"required": ["pipelineResponse"],
	"properties": {
		"pipelineResponse": {
			"type": "array",
			"minItems": 1,
			"items": [{
				"type": "object",
				"required": ["output"],
				"properties": {
					"output": {
						"type": "array",
						"minItems": 1,
						"items": [{
							"type": "object",
							"required": ["target"],
							"properties": {
								"target": {"type": "string"}
							}
						}]
					}
				}
			}]
		}
	}
}`

var responseSchemaLoader = gojsonschema.NewStringLoader(responseSchema)

type pipelineRequest struct {
	InputData     inputData      `json:"inputData"`
	PipelineTasks []pipelineTask `json:"pipelineTasks"`
}

type inputData struct {
	Input []sourceText `json:"input"`
}

type sourceText struct {
	Source string `json:"source"`
}

type pipelineTask struct {
	TaskType string     `json:"taskType"`
	Config   taskConfig `json:"config"`
}

type taskConfig struct {
	Language  languagePair `json:"language"`
	ServiceID string       `json:"serviceId"`
}

type languagePair struct {
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

type pipelineResponse struct {
	PipelineResponse []struct {
		Output []struct {
			Target string `json:"target"`
		} `json:"output"`
	} `json:"pipelineResponse"`
}

type Client struct {
	endpoint   string
	serviceID  string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

func New(cfg config.TranslationConfig, opts ...Option) *Client {
	c := &Client{
		endpoint:   cfg.Endpoint,
		serviceID:  cfg.ServiceID,
		apiKey:     cfg.APIKey,
		httpClient: http.DefaultClient,
	}
	if c.endpoint == "" {
		c.endpoint = config.DefaultTranslationEndpoint
	}
	if c.serviceID == "" {
		c.serviceID = config.DefaultTranslationServiceID
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidateLanguageCodes checks that both codes are two characters long.
func ValidateLanguageCodes(source, target string) error {
	if utf8.RuneCountInString(source) != 2 || utf8.RuneCountInString(target) != 2 {
		return ErrInvalidLanguageCode
	}
	return nil
}

// Translate translates text from source to target language. Each call is one
// request; nothing is retried or cached.
func (c *Client) Translate(ctx context.Context, source, text, target string) (string, error) {
	if err := ValidateLanguageCodes(source, target); err != nil {
		return "", err
	}
	if c.apiKey == "" {
		return "", &UpstreamError{Err: errMissingAPIKey}
	}

	body, err := json.Marshal(pipelineRequest{
		InputData: inputData{Input: []sourceText{{Source: text}}},
		PipelineTasks: []pipelineTask{{
			TaskType: "translation",
			Config: taskConfig{
				Language:  languagePair{SourceLanguage: source, TargetLanguage: target},
				ServiceID: c.serviceID,
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Err: fmt.Errorf("failed to read translation response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{Err: fmt.Errorf("%s for url: %s", resp.Status, c.endpoint)}
	}

	result, err := gojsonschema.Validate(responseSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return "", &UpstreamError{Err: fmt.Errorf("failed to parse translation response: %w", err)}
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return "", &UpstreamError{Err: fmt.Errorf("unexpected translation response: %s", strings.Join(msgs, "; "))}
	}

	var parsed pipelineResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", &UpstreamError{Err: fmt.Errorf("failed to parse translation response: %w", err)}
	}

	return parsed.PipelineResponse[0].Output[0].Target, nil
}
