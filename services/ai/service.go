package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/oneboxhq/onebox/config"
	"github.com/oneboxhq/onebox/interfaces"
	onebox_errors "github.com/oneboxhq/onebox/internal/errors"
	"github.com/oneboxhq/onebox/internal/tracing"
)

const replyPrompt = "Analyze the following email and generate a professional reply:"

// completionTimeout bounds user-facing latency of the reply endpoint.
const completionTimeout = 60 * time.Second

type aiService struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
}

func NewAIService(cfg *config.OpenAIConfig) interfaces.AIService {
	return &aiService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: completionTimeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateReply wraps the email body in the reply instruction prompt and
// submits a single-turn completion request. No retry is performed; the
// caller surfaces the failure.
func (s *aiService) GenerateReply(ctx context.Context, emailBody string) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.GenerateReply")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	payload, err := json.Marshal(chatCompletionRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf("%s\n\n%s", replyPrompt, emailBody)},
		},
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(payload))
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "completion request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "unable to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("completion request failed with status code %d: %s", resp.StatusCode, string(body))
		tracing.TraceErr(span, err)
		return "", err
	}

	var response chatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(err, "failed to unmarshal response")
	}

	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		tracing.TraceErr(span, onebox_errors.ErrEmptyCompletion)
		return "", onebox_errors.ErrEmptyCompletion
	}

	return response.Choices[0].Message.Content, nil
}
