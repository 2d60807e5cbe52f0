package model

import "time"

// ChatMessage is one turn in a follow-up conversation
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest continues a conversation about a fact-check result
type ChatRequest struct {
	FactCheckContext *AnalysisResult `json:"fact_check_context"`
	UserMessage      string          `json:"user_message"`
	History          []ChatMessage   `json:"conversation_history,omitempty"`
}

// ChatResponse is the assistant's reply
type ChatResponse struct {
	Message        string    `json:"message"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
	ContextUsed    bool      `json:"context_used"`
}
