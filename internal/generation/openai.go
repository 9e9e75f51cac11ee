package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/Kinglos01/WanderAi-the-travel-companion/internal/domain"
)

// OpenAI uses chat completions with a strict json_schema response format.
type OpenAI struct {
	apiKey string
	model  string
	client openai.Client
}

// NewOpenAI constructs an OpenAI provider. The SDK's own retries are
// disabled; an empty baseURL keeps the SDK default.
func NewOpenAI(apiKey, model, baseURL string, hc *http.Client) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	return &OpenAI{apiKey: apiKey, model: model, client: openai.NewClient(opts...)}
}

func (o *OpenAI) Name() string { return "openai" }

// Complete sends one chat completion request.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	if o.apiKey == "" {
		return "", domain.ErrMissingCredential
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(o.model),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
		Temperature: openai.Float(req.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "itinerary",
					Schema: req.Schema.JSONSchema(),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", classifyStatus(apiErr.StatusCode, apiErr.Message)
		}
		return "", asUnavailable(err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", domain.ErrMalformedResponse)
	}
	msg := completion.Choices[0].Message
	if msg.Refusal != "" {
		return "", fmt.Errorf("%w: model refused: %s", domain.ErrMalformedResponse, msg.Refusal)
	}
	if msg.Content == "" {
		return "", fmt.Errorf("%w: empty message (finish reason %s)", domain.ErrMalformedResponse, completion.Choices[0].FinishReason)
	}
	return msg.Content, nil
}
