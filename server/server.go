// Package server exposes the chat sessions and the translation adapter over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/deepraj21/bhashabandhu-hackathon/chat"
	"github.com/deepraj21/bhashabandhu-hackathon/store"
	"github.com/deepraj21/bhashabandhu-hackathon/translate"
)

const welcomeMessage = "Welcome to the Nyayved Chatbot API. Please use the /new_chat/ endpoint to start a new chat."

const maxRequestBody = 1 << 20

type Sessions interface {
	Create(ctx context.Context) (store.Session, error)
	List() map[string]string
}

type Conversations interface {
	Send(ctx context.Context, id, userText string) (*chat.Reply, error)
	Transcript(ctx context.Context, id string) (string, []store.Message, error)
}

type Translator interface {
	Translate(ctx context.Context, source, text, target string) (string, error)
}

type App struct {
	sessions   Sessions
	chat       Conversations
	translator Translator
	logger     *slog.Logger
}

func New(sessions Sessions, conversations Conversations, translator Translator, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		sessions:   sessions,
		chat:       conversations,
		translator: translator,
		logger:     logger,
	}
}

// Register registers the API routes on mux.
func (app *App) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", app.HandleWelcome)
	mux.HandleFunc("POST /new_chat/{$}", app.HandleNewChat)
	mux.HandleFunc("POST /send_message/{$}", app.HandleSendMessage)
	mux.HandleFunc("GET /get_chats/{$}", app.HandleGetChats)
	mux.HandleFunc("GET /get_chat_history/{chat_id}", app.HandleGetChatHistory)
	mux.HandleFunc("POST /scaler/translate", app.HandleTranslate)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

// Handler returns the complete HTTP handler: routes wrapped in request
// logging and open CORS.
func (app *App) Handler() http.Handler {
	mux := http.NewServeMux()
	app.Register(mux)
	return CORS(app.logRequests(mux))
}

func (app *App) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, WelcomeResponse{Message: welcomeMessage})
}

func (app *App) HandleNewChat(w http.ResponseWriter, r *http.Request) {
	session, err := app.sessions.Create(r.Context())
	if err != nil {
		app.logger.Error("failed to create chat", "error", err)
		sendErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	app.logger.Info("chat created", "chat_id", session.ID)
	sendJSON(w, http.StatusOK, NewChatResponse{ChatID: session.ID, ChatTitle: session.Title})
}

func (app *App) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SendMessageRequest
	if err := decodeRequest(w, r, &req); err != nil {
		sendErrorResponse(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	reply, err := app.chat.Send(r.Context(), req.ChatID, req.UserMessage)
	if err != nil {
		app.sendError(w, err, "chat_id", req.ChatID)
		return
	}

	app.logger.Info("message answered",
		"chat_id", req.ChatID,
		"messages", len(reply.Messages),
		"elapsed", time.Since(start))

	sendJSON(w, http.StatusOK, SendMessageResponse{Response: reply.Response, Messages: reply.Messages})
}

func (app *App) HandleGetChats(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, app.sessions.List())
}

func (app *App) HandleGetChatHistory(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("chat_id")

	title, messages, err := app.chat.Transcript(r.Context(), chatID)
	if err != nil {
		app.sendError(w, err, "chat_id", chatID)
		return
	}

	sendJSON(w, http.StatusOK, ChatHistoryResponse{ChatTitle: title, Messages: messages})
}

func (app *App) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req TranslationRequest
	if err := decodeRequest(w, r, &req); err != nil {
		sendErrorResponse(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	translated, err := app.translator.Translate(r.Context(), req.SourceLanguage, req.Content, req.TargetLanguage)
	if err != nil {
		app.sendError(w, err, "source_language", req.SourceLanguage, "target_language", req.TargetLanguage)
		return
	}

	app.logger.Debug("content translated",
		"source_language", req.SourceLanguage,
		"target_language", req.TargetLanguage,
		"elapsed", time.Since(start))

	sendJSON(w, http.StatusOK, TranslationResponse{
		StatusCode:        http.StatusOK,
		Message:           "success",
		TranslatedContent: translated,
	})
}

// sendError maps err to a status code and writes the error body. Anything
// that is not a known client error is a 500 carrying the error text.
func (app *App) sendError(w http.ResponseWriter, err error, attrs ...any) {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		sendErrorResponse(w, "Chat not found", http.StatusNotFound)
	case errors.Is(err, translate.ErrInvalidLanguageCode):
		sendErrorResponse(w, "Invalid Language Codes", http.StatusBadRequest)
	default:
		app.logger.Error("request failed", append(attrs, "error", err)...)
		sendErrorResponse(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	return json.NewDecoder(r.Body).Decode(v)
}

func sendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// Helper function to send error responses
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, statusCode, ErrorResponse{Detail: message})
}
