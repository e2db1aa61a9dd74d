package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mkaradima/support-chat-backend/internal/api/middleware"
	"github.com/mkaradima/support-chat-backend/internal/llm"
	"github.com/mkaradima/support-chat-backend/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type PostMessageRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok || !identity.LoggedIn {
		writeError(w, http.StatusForbidden, "You must be signed in to send messages.")
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No message provided.")
		return
	}

	msg, err := h.chatService.PostMessage(r.Context(), identity.UserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "No message provided.")
		case errors.Is(err, llm.ErrCompletionFailed):
			log.Printf("ERROR [handlers.PostMessage] completion failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to get response from AI")
		default:
			log.Printf("ERROR [handlers.PostMessage] %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *ChatHandler) ContinueLastConversation(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User not logged in.")
		return
	}

	conv, err := h.chatService.ContinueLastConversation(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoConversation) {
			writeError(w, http.StatusNotFound, "No previous session found.")
			return
		}
		log.Printf("ERROR [handlers.ContinueLastConversation] %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if len(conv.Messages) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No messages found in the last session."})
		return
	}

	writeJSON(w, http.StatusOK, conv)
}
