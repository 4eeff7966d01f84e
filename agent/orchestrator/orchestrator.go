package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/rs/zerolog/log"

	contractx "github.com/jewelryops/agent/agent/contract"
	promptx "github.com/jewelryops/agent/agent/prompt"
	sessionx "github.com/jewelryops/agent/agent/session"
	toolx "github.com/jewelryops/agent/agent/tool"
)

const (
	defaultHistoryWindow     = 10
	defaultContextWindow     = 5
	defaultContextPreviewLen = 200
	defaultSummaryLimit      = 500
)

// Config tunes one orchestrator instance.
type Config struct {
	Model       string
	Temperature float64

	// HistoryWindow caps the transcript turns sent to the model,
	// ContextWindow/ContextPreviewLen bound the per-turn previews folded
	// into the system message, SummaryLimit caps the stored summary.
	HistoryWindow     int
	ContextWindow     int
	ContextPreviewLen int
	SummaryLimit      int
}

func (c *Config) applyDefaults() {
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = defaultHistoryWindow
	}
	if c.ContextWindow <= 0 {
		c.ContextWindow = defaultContextWindow
	}
	if c.ContextPreviewLen <= 0 {
		c.ContextPreviewLen = defaultContextPreviewLen
	}
	if c.SummaryLimit <= 0 {
		c.SummaryLimit = defaultSummaryLimit
	}
}

// Result reports the outcome of one completed turn.
type Result struct {
	ToolCallsCount int
}

// Orchestrator drives one user turn: prompt build, first streamed
// completion, tool execution, second "final thoughts" completion, and
// transcript accumulation. One turn is strictly sequential; concurrent
// turns on the same session must be serialized by the caller.
type Orchestrator struct {
	client   *openaisdk.Client
	sessions *sessionx.Store
	contexts sessionx.ContextStore
	registry *toolx.Registry
	executor contractx.ToolExecutor
	prompts  promptx.Set
	cfg      Config
}

func New(
	client *openaisdk.Client,
	sessions *sessionx.Store,
	contexts sessionx.ContextStore,
	registry *toolx.Registry,
	executor contractx.ToolExecutor,
	prompts promptx.Set,
	cfg Config,
) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("completion client is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if executor == nil {
		return nil, errors.New("tool executor is required")
	}
	cfg.applyDefaults()

	return &Orchestrator{
		client:   client,
		sessions: sessions,
		contexts: contexts,
		registry: registry,
		executor: executor,
		prompts:  prompts,
		cfg:      cfg,
	}, nil
}

// Session returns the in-memory session for sessionID, restoring it from
// the context store when one is configured and the session is untouched.
func (o *Orchestrator) Session(ctx context.Context, sessionID string) *sessionx.State {
	sess := o.sessions.Get(sessionID)
	if o.contexts == nil || len(sess.Messages) > 0 || sess.ToolCallsCount > 0 {
		return sess
	}

	restored, err := o.contexts.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, sessionx.ErrContextNotFound) {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("context restore failed")
		}
		return sess
	}
	o.sessions.Put(restored)
	return restored
}

// Run processes one user turn and forwards every produced text fragment
// to emit. An emit error aborts the turn (the caller went away). On a
// completion transport failure the turn is aborted and no assistant entry
// is committed; partial state from earlier steps remains.
func (o *Orchestrator) Run(ctx context.Context, sessionID, userMessage string, emit func(string) error) (Result, error) {
	log.Info().Str("session_id", sessionID).Msg("agent turn start")

	sess := o.Session(ctx, sessionID)
	sess.Append(contractx.RoleUser, userMessage)

	messages := o.buildPrompt(sess, userMessage)
	tools := toToolParams(o.registry.Descriptors(ctx))

	buffered, partials, err := o.streamCompletion(ctx, messages, tools, nil)
	if err != nil {
		return Result{ToolCallsCount: sess.ToolCallsCount}, err
	}

	if len(partials) == 0 {
		// No tool calls: the buffered text is the final answer.
		if buffered != "" {
			if err := emit(buffered); err != nil {
				return Result{ToolCallsCount: sess.ToolCallsCount}, err
			}
		}
		o.commit(ctx, sess, buffered)
		return Result{ToolCallsCount: sess.ToolCallsCount}, nil
	}

	calls := assembledCalls(partials)

	if len(calls) > 0 {
		messages = append(messages, assistantToolCallMessage(buffered, calls))

		if err := emit("\nInvestigation Steps:\n"); err != nil {
			return Result{ToolCallsCount: sess.ToolCallsCount}, err
		}
		for i, call := range calls {
			if err := emit(fmt.Sprintf("%d. %s\n", i+1, call.Name)); err != nil {
				return Result{ToolCallsCount: sess.ToolCallsCount}, err
			}
		}
	} else {
		// Every delta arrived without a name; nothing is executable but the
		// turn still goes through the summary pass.
		if err := emit("\nInvestigation Steps:\n(no tools were called for this query)\n"); err != nil {
			return Result{ToolCallsCount: sess.ToolCallsCount}, err
		}
	}

	for _, call := range calls {
		sess.ToolCallsCount++
		log.Info().Str("session_id", sessionID).Str("tool", call.Name).
			Int("call_number", sess.ToolCallsCount).Msg("processing tool call")

		messages = append(messages, openaisdk.ToolMessage(o.runToolCall(ctx, call), call.ID))
	}

	summaryMessages := append(messages, openaisdk.SystemMessage(o.prompts.FinalThoughts))

	if err := emit("\nThoughts:\n"); err != nil {
		return Result{ToolCallsCount: sess.ToolCallsCount}, err
	}

	final, _, err := o.streamCompletion(ctx, summaryMessages, nil, emit)
	if err != nil {
		return Result{ToolCallsCount: sess.ToolCallsCount}, err
	}

	o.commit(ctx, sess, final)
	return Result{ToolCallsCount: sess.ToolCallsCount}, nil
}

// buildPrompt assembles the completion message list: the system message
// (static instructions, optional prior summary, bounded previews of the
// most recent turns) followed by the recent transcript and the new user
// message.
func (o *Orchestrator) buildPrompt(sess *sessionx.State, userMessage string) []openaisdk.ChatCompletionMessageParamUnion {
	var sb strings.Builder
	sb.WriteString(o.prompts.System)

	if sess.InvestigationSummary != "" {
		sb.WriteString("\n Prior Investigation Summary\n")
		sb.WriteString(sess.InvestigationSummary)
	}

	if recent := sess.Recent(o.cfg.ContextWindow); len(recent) > 0 {
		sb.WriteString("\n Recent Conversation Context")
		for _, m := range recent {
			sb.WriteString("\n")
			sb.WriteString(string(m.Role))
			sb.WriteString(": ")
			sb.WriteString(preview(m.Content, o.cfg.ContextPreviewLen))
		}
	}

	messages := []openaisdk.ChatCompletionMessageParamUnion{
		openaisdk.SystemMessage(sb.String()),
	}
	for _, m := range sess.Recent(o.cfg.HistoryWindow) {
		messages = append(messages, toMessageParam(m))
	}
	return append(messages, openaisdk.UserMessage(userMessage))
}

// streamCompletion issues one streamed completion. Text deltas go to emit
// when it is non-nil, and are always accumulated into the returned string.
// Tool-call deltas are assembled by positional index.
func (o *Orchestrator) streamCompletion(
	ctx context.Context,
	messages []openaisdk.ChatCompletionMessageParamUnion,
	tools []openaisdk.ChatCompletionToolUnionParam,
	emit func(string) error,
) (string, []contractx.PartialToolCall, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(o.cfg.Model),
		Temperature: openaisdk.Float(o.cfg.Temperature),
		Messages:    messages,
	}
	if len(tools) > 0 {
		params.Tools = tools
	}

	stream := o.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var text strings.Builder
	var partials []contractx.PartialToolCall

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta

		if delta.Content != "" {
			text.WriteString(delta.Content)
			if emit != nil {
				if err := emit(delta.Content); err != nil {
					return text.String(), partials, err
				}
			}
		}

		for _, tc := range delta.ToolCalls {
			partials = appendToolCallDelta(partials, int(tc.Index), tc.ID, tc.Function.Name, tc.Function.Arguments)
		}
	}

	if err := stream.Err(); err != nil {
		return text.String(), partials, fmt.Errorf("%w: %v", contractx.ErrCompletion, err)
	}
	return text.String(), partials, nil
}

// appendToolCallDelta folds one streamed tool-call delta into the partial
// list. The index space is pre-extended with empty placeholders so
// out-of-order delta indices cannot fail; argument fragments concatenate
// in arrival order.
func appendToolCallDelta(partials []contractx.PartialToolCall, index int, id, name, arguments string) []contractx.PartialToolCall {
	if index < 0 {
		return partials
	}
	for len(partials) <= index {
		partials = append(partials, contractx.PartialToolCall{})
	}

	p := &partials[index]
	if id != "" {
		p.ID = id
	}
	if name != "" {
		p.Name = name
	}
	p.Arguments += arguments
	return partials
}

// assembledCalls drops partials that never received a name; the rest keep
// their positional (first-seen) order.
func assembledCalls(partials []contractx.PartialToolCall) []contractx.ToolCall {
	calls := make([]contractx.ToolCall, 0, len(partials))
	for _, p := range partials {
		if p.Name == "" {
			continue
		}
		calls = append(calls, contractx.ToolCall{ID: p.ID, Name: p.Name, Arguments: p.Arguments})
	}
	return calls
}

// runToolCall parses the accumulated argument text and invokes the
// executor. Failures local to the call come back as an error string the
// model can read; they never abort the turn.
func (o *Orchestrator) runToolCall(ctx context.Context, call contractx.ToolCall) string {
	args := map[string]any{}
	if strings.TrimSpace(call.Arguments) != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			log.Error().Err(err).Str("tool", call.Name).Msg("invalid tool arguments")
			return fmt.Sprintf("Error: invalid arguments - %v", err)
		}
	}

	result, err := o.executor.Execute(ctx, call.Name, args)
	if err != nil {
		log.Error().Err(err).Str("tool", call.Name).Msg("tool execution failed")
		return fmt.Sprintf("Error: %v", err)
	}
	return result
}

// commit records the final answer on the session and mirrors the session
// to the context store when one is configured. Mirroring is best effort.
func (o *Orchestrator) commit(ctx context.Context, sess *sessionx.State, final string) {
	if final != "" {
		sess.Append(contractx.RoleAssistant, final)
		sess.SetSummary(final, o.cfg.SummaryLimit)
	}

	if o.contexts == nil {
		return
	}
	if err := o.contexts.Save(ctx, sess); err != nil {
		log.Warn().Err(err).Str("session_id", sess.SessionID).Msg("context save failed")
	}
}

func toMessageParam(m contractx.Message) openaisdk.ChatCompletionMessageParamUnion {
	switch m.Role {
	case contractx.RoleSystem:
		return openaisdk.SystemMessage(m.Content)
	case contractx.RoleAssistant:
		return openaisdk.AssistantMessage(m.Content)
	case contractx.RoleTool:
		return openaisdk.ToolMessage(m.Content, m.ToolCallID)
	default:
		return openaisdk.UserMessage(m.Content)
	}
}

func assistantToolCallMessage(content string, calls []contractx.ToolCall) openaisdk.ChatCompletionMessageParamUnion {
	toolCalls := make([]openaisdk.ChatCompletionMessageToolCallUnionParam, 0, len(calls))
	for _, c := range calls {
		toolCalls = append(toolCalls, openaisdk.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openaisdk.ChatCompletionMessageFunctionToolCallParam{
				ID: c.ID,
				Function: openaisdk.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      c.Name,
					Arguments: c.Arguments,
				},
			},
		})
	}

	assistant := openaisdk.ChatCompletionAssistantMessageParam{ToolCalls: toolCalls}
	if content != "" {
		assistant.Content = openaisdk.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openaisdk.String(content),
		}
	}
	return openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func toToolParams(descriptors []contractx.ToolDescriptor) []openaisdk.ChatCompletionToolUnionParam {
	if len(descriptors) == 0 {
		return nil
	}
	tools := make([]openaisdk.ChatCompletionToolUnionParam, 0, len(descriptors))
	for _, d := range descriptors {
		tools = append(tools, openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
			Name:        d.Name,
			Description: openaisdk.String(d.Description),
			Parameters:  openaisdk.FunctionParameters(d.Parameters),
		}))
	}
	return tools
}

func preview(content string, limit int) string {
	r := []rune(content)
	if limit <= 0 || len(r) <= limit {
		return content
	}
	return string(r[:limit]) + "..."
}
