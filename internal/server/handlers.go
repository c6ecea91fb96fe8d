package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/pkg/utils"
)

const invalidRequestMessage = "Invalid request format"

type chatResponse struct {
	Response string `json:"response"`
	Status   string `json:"status"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	message, err := decodeMessage(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.logger.Debug("rejected chat request",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		s.respondError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}
	s.logger.Debug("chat request",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("message", utils.Truncate(message, 200)),
	)
	response := s.bot.BestResponse(r.Context(), message)
	s.respondJSON(w, http.StatusOK, chatResponse{Response: response, Status: "success"})
}

// decodeMessage requires a JSON object with a string "message" member.
func decodeMessage(body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", err
	}
	raw, ok := fields["message"]
	if !ok {
		return "", errors.New("message is required")
	}
	var message *string
	if err := json.Unmarshal(raw, &message); err != nil {
		return "", err
	}
	if message == nil {
		return "", errors.New("message is null")
	}
	return *message, nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
