package server

import (
	"encoding/json"
	"io"
	"net/http"

	"credentialing/internal/tools"
)

const maxArgumentBytes = 1 << 20

type toolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Mutating    bool            `json:"mutating"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleListTools(w http.ResponseWriter, r *http.Request) {
	registered := s.registry.Tools()
	out := make([]toolDescriptor, 0, len(registered))
	for _, tool := range registered {
		out = append(out, toolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			Mutating:    tool.Mutating,
			InputSchema: tool.Schema,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

func (s *Service) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxArgumentBytes))
	if err != nil {
		s.logger.WithError(err).Error("failed to read tool arguments")
		s.writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: "failed to read request body", Kind: tools.KindValidation})
		return
	}

	result, err := s.registry.InvokeJSON(r.Context(), name, body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resultEnvelope{Result: result})
}
