// Package loop implements the Cognitive Loop (component F): bounded
// Reason→Act iteration over an LLM, dispatching function-call decisions
// to terminal states or to intent resolution and tool execution,
// grounded on chapter03/kernel.py's run_cognitive_loop.
package loop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kadirpekel/intentkernel/internal/capability"
	"github.com/kadirpekel/intentkernel/internal/intentstore"
	"github.com/kadirpekel/intentkernel/internal/llm"
	"github.com/kadirpekel/intentkernel/internal/prompt"
	"github.com/kadirpekel/intentkernel/internal/trace"
)

// Status is a terminal state of a task run.
type Status string

const (
	StatusComplete Status = "COMPLETE"
	StatusBlocked  Status = "BLOCKED"
)

// Result is run_task's return value: a terminal state plus the
// message that explains it (the task_complete result/reason, or the
// task_blocked/iteration-budget reason).
type Result struct {
	Status  Status
	Message string
}

// defaultTopN is the number of intent candidates the act phase
// requests per query (spec §4.F: "top-N (default 5)"); not exposed as
// a configuration knob because the spec's own configuration surface
// (§4.G) does not list one.
const defaultTopN = 5

// intentQuerier is the slice of Intent Store behavior the loop needs.
type intentQuerier interface {
	QueryByText(ctx context.Context, text string, n int, itemType intentstore.ItemType) ([]intentstore.Match, error)
}

// toolCaller is the slice of Capability Host behavior the loop needs.
type toolCaller interface {
	CallTool(ctx context.Context, toolURI string, args map[string]any) (map[string]any, error)
}

// Loop orchestrates one task run at a time. It owns the Trace Log for
// that run, resetting it at the start of every run_task call.
type Loop struct {
	store    intentQuerier
	host     toolCaller
	llm      llm.Client
	renderer *prompt.Renderer
	trace    *trace.Log
	topN     int
}

// New builds a Cognitive Loop over a real Capability Host, Intent
// Store, LLM client, Prompt Renderer, and Trace Log.
func New(store *intentstore.Store, host *capability.Host, client llm.Client, renderer *prompt.Renderer, tr *trace.Log) *Loop {
	return &Loop{
		store:    store,
		host:     host,
		llm:      client,
		renderer: renderer,
		trace:    tr,
		topN:     defaultTopN,
	}
}

// decision is one parsed reasoning-phase function call.
type decision struct {
	Name      string
	Arguments map[string]any
}

// RunTask executes one task to completion (spec §4.F). It always
// returns within maxIterations iterations (I5), terminating in
// COMPLETE or BLOCKED. The only error it returns is a configuration-hard
// failure (a malformed prompt template) that aborts the run entirely;
// every other failure mode (LLM transport, store I/O, tool invocation,
// malformed tool-call arguments) is recorded in the trace and the loop
// continues.
func (l *Loop) RunTask(ctx context.Context, description string, maxIterations int) (Result, error) {
	l.trace.Reset()

	for i := 0; i < maxIterations; i++ {
		select {
		case <-ctx.Done():
			return Result{Status: StatusBlocked, Message: "cancelled"}, nil
		default:
		}

		d, ok, err := l.reason(ctx, description)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			continue
		}

		switch d.Name {
		case "task_complete":
			reason, _ := d.Arguments["reason"].(string)
			result, _ := d.Arguments["result"].(string)
			l.trace.Append("Task analysis", "task_complete", reason)
			message := reason
			if result != "" {
				message = result
			}
			return Result{Status: StatusComplete, Message: message}, nil

		case "task_blocked":
			reason, _ := d.Arguments["reason"].(string)
			l.trace.Append("Task analysis", "task_blocked", reason)
			return Result{Status: StatusBlocked, Message: reason}, nil

		case "do":
			intent, _ := d.Arguments["intent"].(string)
			rationale, _ := d.Arguments["rationale"].(string)
			if err := l.act(ctx, description, intent, rationale); err != nil {
				return Result{}, err
			}

		default:
			slog.Warn("unknown reasoning decision, iteration consumed", "function", d.Name)
		}
	}

	message := fmt.Sprintf("Max iterations (%d) reached.", maxIterations)
	l.trace.Append("Task analysis", "task_blocked", message)
	return Result{Status: StatusBlocked, Message: message}, nil
}

// reason runs one reasoning-phase LLM call. ok is false when the
// iteration should be consumed without acting: either the model
// returned no function call, or the call itself failed (the latter is
// also recorded as a trace entry, per the LLM-Transport error kind).
func (l *Loop) reason(ctx context.Context, description string) (decision, bool, error) {
	promptText, err := l.renderer.RenderReasoning(prompt.ReasoningVars{
		TaskDescription: description,
		ActionTrace:     toPromptTrace(l.trace.Snapshot()),
	})
	if err != nil {
		return decision{}, false, fmt.Errorf("render reasoning prompt: %w", err)
	}

	resp, err := l.llm.Complete(llm.CompletionRequest{
		Messages:   []llm.Message{{Role: "user", Content: promptText}},
		Tools:      reasoningTools(),
		ToolChoice: llm.ToolChoiceAuto,
	})
	if err != nil {
		slog.Error("reasoning phase LLM call failed", "error", err)
		l.trace.Append("Task analysis", "LLM-Transport", err.Error())
		return decision{}, false, nil
	}

	if len(resp.ToolCalls) == 0 {
		slog.Warn("reasoning phase returned no function call")
		return decision{}, false, nil
	}

	call := resp.ToolCalls[0]
	return decision{Name: call.Name, Arguments: call.Arguments}, true, nil
}

// act runs the act phase for one `do` decision: query candidates,
// render the action prompt, call the LLM, and dispatch the chosen
// action. Only a malformed action-prompt template aborts the run; every
// other outcome is recorded in the trace.
func (l *Loop) act(ctx context.Context, description, intent, rationale string) error {
	candidates, err := l.store.QueryByText(ctx, intent, l.topN, "")
	if err != nil {
		slog.Error("intent store query failed, treating as no candidates", "error", err)
		candidates = nil
	}

	if len(candidates) == 0 {
		l.trace.Append(rationale, intent, "no candidates")
		return nil
	}

	promptText, err := l.renderer.RenderAction(prompt.ActionVars{
		TaskDescription: description,
		CurrentIntent:   intent,
		IntentRationale: rationale,
		Options:         toPromptOptions(candidates),
		ActionTrace:     toPromptTrace(l.trace.Snapshot()),
	})
	if err != nil {
		return fmt.Errorf("render action prompt: %w", err)
	}

	resp, err := l.llm.Complete(llm.CompletionRequest{
		Messages:   []llm.Message{{Role: "user", Content: promptText}},
		Tools:      actionTools(),
		ToolChoice: llm.ToolChoiceRequired,
	})
	if err != nil {
		slog.Error("action phase LLM call failed", "error", err)
		l.trace.Append(rationale, intent, fmt.Sprintf("Action phase error: %v", err))
		return nil
	}

	if len(resp.ToolCalls) == 0 {
		l.trace.Append(rationale, intent, "LLM failed to select an action.")
		return nil
	}

	l.dispatchAction(ctx, rationale, intent, candidates, resp.ToolCalls[0])
	return nil
}

// dispatchAction handles one of the four action-phase tool calls,
// appending exactly one trace entry describing its outcome.
func (l *Loop) dispatchAction(ctx context.Context, rationale, intent string, candidates []intentstore.Match, call llm.ToolCall) {
	switch call.Name {
	case "execute_tool":
		l.executeTool(ctx, rationale, call.Arguments)

	case "refine_intent":
		l.refineIntent(rationale, candidates, call.Arguments)

	case "insufficient_information":
		missing, _ := call.Arguments["missing_parameters"].(string)
		if missing == "" {
			missing = "Unknown parameters"
		}
		l.trace.Append(rationale, intent, "Insufficient information: "+missing)

	case "no_suitable_tool":
		reason, _ := call.Arguments["reason"].(string)
		if reason == "" {
			reason = "No reason provided"
		}
		l.trace.Append(rationale, intent, "No suitable tool: "+reason)

	default:
		slog.Warn("unexpected action-phase function", "function", call.Name)
		l.trace.Append(rationale, intent, "Unknown action: "+call.Name)
	}
}

func (l *Loop) executeTool(ctx context.Context, rationale string, args map[string]any) {
	toolURI, _ := args["tool_uri"].(string)
	if toolURI == "" {
		l.trace.Append(rationale, "EXECUTE_TOOL", "Missing required 'tool_uri' argument for execute_tool")
		return
	}

	toolArgs, _ := args["arguments"].(map[string]any)

	if _, _, err := capability.ParseToolURI(toolURI); err != nil {
		l.trace.Append(rationale, fmt.Sprintf("EXECUTE_TOOL: %s", toolURI), err.Error())
		return
	}

	label := fmt.Sprintf("EXECUTE_TOOL: %s", toolURI)
	result, err := l.host.CallTool(ctx, toolURI, toolArgs)
	if err != nil {
		l.trace.Append(rationale, label, err.Error())
		return
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		l.trace.Append(rationale, label, fmt.Sprintf("tool result could not be serialized: %v", err))
		return
	}
	l.trace.Append(rationale, label, string(resultJSON))
}

func (l *Loop) refineIntent(rationale string, candidates []intentstore.Match, args map[string]any) {
	intentID, _ := args["intent_id"].(string)
	explanation, _ := args["explanation"].(string)

	if intentID == "" {
		l.trace.Append(rationale, "REFINE_INTENT", "Missing required 'intent_id' argument for refine_intent")
		return
	}

	label := "REFINE_INTENT: " + intentID
	for _, c := range candidates {
		if c.ID == intentID {
			l.trace.Append(rationale, label, fmt.Sprintf("Refined to: %s. %s", c.Text, explanation))
			return
		}
	}
	l.trace.Append(rationale, label, fmt.Sprintf("Failed to find intent document. %s", explanation))
}

func toPromptTrace(entries []trace.Entry) []prompt.TraceEntry {
	out := make([]prompt.TraceEntry, len(entries))
	for i, e := range entries {
		out[i] = prompt.TraceEntry{Reasoning: e.Reasoning, Action: e.Action, Result: e.Result}
	}
	return out
}

func toPromptOptions(matches []intentstore.Match) []prompt.Option {
	out := make([]prompt.Option, len(matches))
	for i, m := range matches {
		typ := "l1"
		if m.Type == intentstore.TypeL2 {
			typ = "l2"
		}
		out[i] = prompt.Option{
			ID:         m.ID,
			Text:       m.Text,
			Type:       typ,
			ServerName: m.ServerName,
			ToolURI:    m.ToolURI,
			Similarity: m.Similarity,
		}
	}
	return out
}
