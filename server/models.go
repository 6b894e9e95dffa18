package server

import "github.com/deepraj21/bhashabandhu-hackathon/store"

// Request and response types
type WelcomeResponse struct {
	Message string `json:"message"`
}

type NewChatResponse struct {
	ChatID    string `json:"chat_id"`
	ChatTitle string `json:"chat_title"`
}

type SendMessageRequest struct {
	ChatID      string `json:"chat_id"`
	UserMessage string `json:"user_message"`
}

type SendMessageResponse struct {
	Response string          `json:"response"`
	Messages []store.Message `json:"messages"`
}

type ChatHistoryResponse struct {
	ChatTitle string          `json:"chat_title"`
	Messages  []store.Message `json:"messages"`
}

type TranslationRequest struct {
	SourceLanguage string `json:"source_language"`
	Content        string `json:"content"`
	TargetLanguage string `json:"target_language"`
}

type TranslationResponse struct {
	StatusCode        int    `json:"status_code"`
	Message           string `json:"message"`
	TranslatedContent string `json:"translated_content"`
}

// ErrorResponse keeps the {"detail": ...} body existing clients already parse.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
