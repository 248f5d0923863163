package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rumbo-ai/rumbo/internal/observe"
	"github.com/rumbo-ai/rumbo/pkg/career"
)

// maxChatBodySize caps a chat request body. Messages are conversational
// text; anything near this limit is not a message.
const maxChatBodySize = 64 << 10 // 64KB

// ChatRequest is the POST /chat request body.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// errorBody is the JSON error response shape.
type errorBody struct {
	Error string `json:"error"`
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)
		defer r.Body.Close()

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.UserID == "" {
			httpError(w, http.StatusBadRequest, "user_id is required")
			return
		}
		if req.Message == "" {
			httpError(w, http.StatusBadRequest, "message is required")
			return
		}

		result, err := deps.Orchestrator.ProcessTurn(r.Context(), req.UserID, req.Message)
		if err != nil {
			observe.Logger(r.Context()).Error("turn failed", "user_id", req.UserID, "err", err)
			httpError(w, http.StatusInternalServerError, "turn could not be processed")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// careersResponse is the GET /careers response body.
type careersResponse struct {
	Careers []career.Record `json:"careers"`
	Total   int             `json:"total"`
}

func handleListCareers(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := deps.Index.All()
		total := len(records)

		if v := r.URL.Query().Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 0 {
				httpError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			if limit < len(records) {
				records = records[:limit]
			}
		}

		writeJSON(w, http.StatusOK, careersResponse{Careers: records, Total: total})
	}
}

// httpError writes a JSON error body with the given status code.
func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorBody{Error: fmt.Sprintf(format, args...)})
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding response"}`, http.StatusInternalServerError)
	}
}
