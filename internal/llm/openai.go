package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openAIModel = "gpt-4o-mini"

// OpenAIInvoker asks for a strict JSON-schema response so the output can be
// normalized without prose stripping in the common case.
type OpenAIInvoker struct {
	model  string
	client *openai.Client
}

func NewOpenAIInvoker(apiKey, model, baseURL string) *OpenAIInvoker {
	if model == "" {
		model = openAIModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIInvoker{
		model:  model,
		client: openai.NewClient(opts...),
	}
}

// OutputSchema returns the JSON schema of domain.AgentOutput with the verdict
// restricted to the allowed labels.
func OutputSchema(verdicts []domain.Verdict) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(domain.AgentOutput{})
	if len(verdicts) > 0 {
		if prop, ok := schema.Properties.Get("verdict"); ok {
			enum := make([]any, len(verdicts))
			for i, v := range verdicts {
				enum[i] = string(v)
			}
			prop.Enum = enum
		}
	}
	return schema
}

func (c *OpenAIInvoker) Invoke(ctx context.Context, agent domain.AgentConfig, query domain.Query) (string, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        openai.F("agent_output"),
		Description: openai.F("Verdict, confidence, findings and reasoning of one analyst"),
		Schema:      openai.F[interface{}](OutputSchema(query.Verdicts)),
		Strict:      openai.Bool(true),
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(renderPrompt(agent, query)),
		}),
		Model:       openai.F(modelOr(agent, c.model)),
		Temperature: openai.F(0.2),
		ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONSchemaParam{
				Type:       openai.F(openai.ResponseFormatJSONSchemaTypeJSONSchema),
				JSONSchema: openai.F(schemaParam),
			},
		),
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai API returned no choices")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
