package loop

import "github.com/kadirpekel/intentkernel/internal/llm"

// reasoningTools returns the three built-in meta-tools the reasoning
// phase offers the model (spec §4.F): task_complete, task_blocked, do.
// Schemas are ported directly from chapter03/kernel.py's REASONING_TOOLS.
func reasoningTools() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        "task_complete",
			Description: "Mark the current task as completed with a reason and optional result.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reason": map[string]any{
						"type":        "string",
						"description": "Why the task is complete",
					},
					"result": map[string]any{
						"type":        "string",
						"description": "The final answer or result if the task was a question or required a specific output",
					},
				},
				"required": []string{"reason"},
			},
		},
		{
			Name:        "task_blocked",
			Description: "Mark the current task as blocked with a reason.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reason": map[string]any{
						"type":        "string",
						"description": "Why the task is blocked",
					},
				},
				"required": []string{"reason"},
			},
		},
		{
			Name:        "do",
			Description: "Execute an action with given intent and rationale.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"intent": map[string]any{
						"type":        "string",
						"description": "The intent or goal of the action",
					},
					"rationale": map[string]any{
						"type":        "string",
						"description": "Why this action should be taken",
					},
				},
				"required": []string{"intent", "rationale"},
			},
		},
	}
}

// actionTools returns the four fixed act-phase tools (spec §4.F):
// execute_tool, refine_intent, insufficient_information, no_suitable_tool.
// Schemas are ported directly from chapter03/kernel.py's ACTION_TOOLS.
func actionTools() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        "execute_tool",
			Description: "Execute a specific tool with the provided arguments.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"tool_uri": map[string]any{
						"type":        "string",
						"description": "The tool URI in format 'tool::server_name::tool_name'",
					},
					"arguments": map[string]any{
						"type":        "object",
						"description": "The arguments to pass to the tool",
					},
				},
				"required": []string{"tool_uri", "arguments"},
			},
		},
		{
			Name:        "refine_intent",
			Description: "Refine the current intent using an L2 intent category.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"intent_id": map[string]any{
						"type":        "string",
						"description": "The ID of the L2 intent to use for refinement",
					},
					"explanation": map[string]any{
						"type":        "string",
						"description": "Explanation of how this refinement helps",
					},
				},
				"required": []string{"intent_id", "explanation"},
			},
		},
		{
			Name:        "insufficient_information",
			Description: "Tools are suitable but essential parameters are missing.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"missing_parameters": map[string]any{
						"type":        "string",
						"description": "Description of what specific information is needed",
					},
				},
				"required": []string{"missing_parameters"},
			},
		},
		{
			Name:        "no_suitable_tool",
			Description: "None of the available tools are suitable for the intent.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"reason": map[string]any{
						"type":        "string",
						"description": "Explanation of why no tool is suitable",
					},
				},
				"required": []string{"reason"},
			},
		},
	}
}
