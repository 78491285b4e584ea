package strategy

import "github.com/abhisek/learnsense/internal/llm"

// misconceptionDef is the shared misconception element schema.
var misconceptionDef = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"concept":   map[string]any{"type": "string"},
		"why_wrong": map[string]any{"type": "string"},
		"hints": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"diagnostic_question": map[string]any{"type": "string"},
		"severity": map[string]any{
			"type": "string",
			"enum": []any{"low", "medium", "high"},
		},
		"teaching": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"explanation":        map[string]any{"type": "string"},
				"analogy":            map[string]any{"type": "string"},
				"follow_up_question": map[string]any{"type": "string"},
			},
		},
		"final_answer": map[string]any{"type": "string"},
	},
	"required": []any{"concept", "why_wrong", "hints"},
}

// DiagnoseSchema is the JSON schema for step-level diagnosis responses.
var DiagnoseSchema = &llm.Schema{
	Name:        "diagnose-turn",
	Description: "Step-level analysis of a student's answer with misconceptions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_correct": map[string]any{"type": "boolean"},
			"confidence": map[string]any{
				"type": "number", "minimum": 0.0, "maximum": 1.0,
			},
			"steps": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"wrong_step_index": map[string]any{
				"type":        "integer",
				"description": "0-based index of the first incorrect step, -1 if fully correct",
			},
			"fix":            map[string]any{"type": "string"},
			"misconceptions": map[string]any{"type": "array", "items": misconceptionDef},
		},
		"required": []any{"is_correct", "confidence", "misconceptions"},
	},
}

// SocraticSchema is the JSON schema for Socratic turn responses.
var SocraticSchema = &llm.Schema{
	Name:        "socratic-turn",
	Description: "One Socratic tutoring step: next question plus misconceptions with hint ladders",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_correct": map[string]any{"type": "boolean"},
			"confidence": map[string]any{
				"type": "number", "minimum": 0.0, "maximum": 1.0,
			},
			"next_question":  map[string]any{"type": "string"},
			"misconceptions": map[string]any{"type": "array", "items": misconceptionDef},
		},
		"required": []any{"is_correct", "confidence", "next_question", "misconceptions"},
	},
}

// ExamSchema is the JSON schema for exam question generation.
var ExamSchema = &llm.Schema{
	Name:        "exam-questions",
	Description: "A set of exam questions with difficulty and type labels",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"q":     map[string]any{"type": "string"},
						"topic": map[string]any{"type": "string"},
						"difficulty": map[string]any{
							"type": "string",
							"enum": []any{"easy", "medium", "hard"},
						},
						"type": map[string]any{
							"type": "string",
							"enum": []any{"concept", "application", "trap"},
						},
					},
					"required": []any{"q"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

// ReportSchema is the JSON schema for exam report generation.
var ReportSchema = &llm.Schema{
	Name:        "exam-report",
	Description: "Summary report over a completed exam",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{"type": "string"},
			"score_estimate": map[string]any{
				"type": "integer", "minimum": 0, "maximum": 100,
			},
			"weakest_concepts": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"next_steps": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"summary", "score_estimate", "weakest_concepts", "next_steps"},
	},
}
