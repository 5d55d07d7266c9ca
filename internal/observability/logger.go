package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeAttempt      EventType = "attempt"
	EventTypePlan         EventType = "plan"
	EventTypeExecution    EventType = "execution"
	EventTypeVerification EventType = "verification"
	EventTypePolicyCheck  EventType = "policy_check"
	EventTypeHeartbeat    EventType = "heartbeat"
	EventTypeLLM          EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	Source    string    `json:"source,omitempty"`
	Phase     string    `json:"phase,omitempty"`
	Attempt   int       `json:"attempt"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging. A nil Logger discards events.
type Logger struct {
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to stdout. LLM transcript events
// are additionally appended to the jsonl file.
func (l *Logger) Log(evt Event) {
	if l == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(attempt int, plan string) {
	l.Log(Event{
		Type:    EventTypePlan,
		Attempt: attempt,
		Data:    map[string]string{"plan": plan},
	})
}

func (l *Logger) LogExecution(attempt int, proposedAnswer string) {
	l.Log(Event{
		Type:    EventTypeExecution,
		Attempt: attempt,
		Data:    map[string]string{"proposed_answer": proposedAnswer},
	})
}

func (l *Logger) LogVerification(attempt int, passed bool, issues string) {
	l.Log(Event{
		Type:    EventTypeVerification,
		Attempt: attempt,
		Data: map[string]any{
			"passed": passed,
			"issues": issues,
		},
	})
}

func (l *Logger) LogAttemptFailure(attempt int, phase, reason string) {
	l.Log(Event{
		Type:    EventTypeAttempt,
		Phase:   phase,
		Attempt: attempt,
		Data:    map[string]string{"outcome": "failed", "reason": reason},
	})
}

func (l *Logger) LogPolicyCheck(source, effect, reason string) {
	l.Log(Event{
		Type:   EventTypePolicyCheck,
		Source: source,
		Data: map[string]string{
			"effect": effect,
			"reason": reason,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(phase string, attempt int, prompt, response string) {
	l.Log(Event{
		Type:    EventTypeLLM,
		Phase:   phase,
		Attempt: attempt,
		Data: map[string]any{
			"prompt":   prompt,
			"response": response,
		},
	})
}
