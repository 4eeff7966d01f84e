package tool

import (
	"context"
	"encoding/json"
	"regexp"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/rs/zerolog/log"

	contractx "github.com/jewelryops/agent/agent/contract"
	promptx "github.com/jewelryops/agent/agent/prompt"
)

const (
	ToolExtractEntities   = "extract_entities"
	ToolSummarizeState    = "summarize_state"
	ToolCheckConfirmation = "check_requires_confirmation"
)

// Func is the in-process tool implementation contract. Errors returned
// here propagate to the executor's caller; tools that want the model to
// see a failure encode it into the result string instead.
type Func func(ctx context.Context, args map[string]any) (string, error)

// LocalTool pairs a descriptor with its in-process implementation.
type LocalTool struct {
	Descriptor contractx.ToolDescriptor
	Run        Func
}

// Matches the first JSON object in a model reply, across newlines.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type ExtractEntitiesArgs struct {
	Query string `json:"query" jsonschema:"description=The text to extract entities from"`
}

type SummarizeStateArgs struct {
	History      string `json:"history" jsonschema:"description=A text representation of the conversation and tool results"`
	CurrentNotes string `json:"current_notes,omitempty" jsonschema:"description=Optional notes to fold into the summary"`
}

type CheckConfirmationArgs struct {
	ActionDescription string `json:"action_description" jsonschema:"description=Description of the action to check"`
}

type localClient struct {
	client  *openaisdk.Client
	model   string
	prompts promptx.Set
}

// NewLocalTools builds the in-process tool set. Each tool issues its own
// completion against the tool model and returns the first JSON object
// found in the reply; transport failures come back as an error JSON
// payload so the investigating model can adapt.
func NewLocalTools(client *openaisdk.Client, model string, prompts promptx.Set) []LocalTool {
	lc := &localClient{client: client, model: model, prompts: prompts}

	return []LocalTool{
		{
			Descriptor: contractx.ToolDescriptor{
				Name:        ToolExtractEntities,
				Description: "Extract customer IDs, order IDs, and SKU codes from text",
				Parameters:  mustSchemaFor[ExtractEntitiesArgs](),
			},
			Run: lc.extractEntities,
		},
		{
			Descriptor: contractx.ToolDescriptor{
				Name:        ToolSummarizeState,
				Description: "Summarize the current investigation state",
				Parameters:  mustSchemaFor[SummarizeStateArgs](),
			},
			Run: lc.summarizeState,
		},
		{
			Descriptor: contractx.ToolDescriptor{
				Name:        ToolCheckConfirmation,
				Description: "Check if an action requires explicit user confirmation",
				Parameters:  mustSchemaFor[CheckConfirmationArgs](),
			},
			Run: lc.checkConfirmation,
		},
	}
}

func (l *localClient) extractEntities(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")

	content, err := l.complete(ctx, l.prompts.ExtractEntities, "Extract entities from: "+query)
	if err != nil {
		log.Error().Err(err).Str("tool", ToolExtractEntities).Msg("tool request failed")
		return mustJSON(map[string]any{
			"customer_ids": []string{},
			"order_ids":    []string{},
			"skus":         []string{},
			"error":        err.Error(),
		}), nil
	}

	if match := jsonObjectPattern.FindString(content); match != "" {
		return match, nil
	}
	return content, nil
}

func (l *localClient) summarizeState(ctx context.Context, args map[string]any) (string, error) {
	history := stringArg(args, "history")
	notes := stringArg(args, "current_notes")

	user := "Summarize this investigation:\n\nHistory:\n" + history + "\n\nAdditional notes:\n" + notes
	content, err := l.complete(ctx, l.prompts.SummarizeState, user)
	if err != nil {
		log.Error().Err(err).Str("tool", ToolSummarizeState).Msg("tool request failed")
		return mustJSON(map[string]any{
			"error":   err.Error(),
			"summary": "Unable to summarize",
		}), nil
	}

	if match := jsonObjectPattern.FindString(content); match != "" {
		return match, nil
	}
	return mustJSON(map[string]any{
		"summary":      content,
		"key_findings": []string{},
		"open_items":   []string{},
	}), nil
}

func (l *localClient) checkConfirmation(ctx context.Context, args map[string]any) (string, error) {
	action := stringArg(args, "action_description")

	content, err := l.complete(ctx, l.prompts.CheckConfirmation, "Does this action require user confirmation? "+action)
	if err != nil {
		log.Error().Err(err).Str("tool", ToolCheckConfirmation).Msg("tool request failed")
		return mustJSON(map[string]any{
			"requires_confirmation": true,
			"reason":                "Error checking confirmation: " + err.Error(),
		}), nil
	}

	if match := jsonObjectPattern.FindString(content); match != "" {
		return match, nil
	}
	return mustJSON(map[string]any{
		"requires_confirmation": true,
		"reason":                "Unable to determine - defaulting to safe choice",
	}), nil
}

func (l *localClient) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := l.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(l.model),
		Temperature: openaisdk.Float(0),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(system),
			openaisdk.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func stringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	s, _ := args[key].(string)
	return s
}

func mustJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return `{"error":"unserializable tool result"}`
	}
	return string(raw)
}
