// Package dispatch routes host hook events into Store, Extractor,
// Checkpointer, Tiering, and Lifecycle calls.
package dispatch

// Payload is the JSON object a hook invocation reads from standard input.
type Payload struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	Cwd            string `json:"cwd"`
	HookEventName  string `json:"hook_event_name"`
	Source         string `json:"source,omitempty"`
	Trigger        string `json:"trigger,omitempty"`
	StopHookActive bool   `json:"stop_hook_active,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// HookOutput is the JSON object SessionStart writes to standard output when
// it has additional context to inject.
type HookOutput struct {
	HookSpecificOutput HookSpecificOutput `json:"hookSpecificOutput"`
}

// HookSpecificOutput carries SessionStart's additional-context payload.
type HookSpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}
