package server

import (
	"encoding/json"
	"net/http"

	"credentialing/internal/tools"
	"credentialing/pkg/types"
)

type resultEnvelope struct {
	Result any `json:"result"`
}

type errorEnvelope struct {
	Error    string          `json:"error"`
	Kind     string          `json:"kind"`
	Blockers []types.Blocker `json:"blockers,omitempty"`
}

var statusByKind = map[string]int{
	tools.KindValidation:    http.StatusBadRequest,
	tools.KindPathSafety:    http.StatusBadRequest,
	tools.KindEvidence:      http.StatusBadRequest,
	tools.KindAuthorization: http.StatusForbidden,
	tools.KindNotFound:      http.StatusNotFound,
	tools.KindGuard:         http.StatusConflict,
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	kind := tools.ErrorKind(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	s.writeJSON(w, status, errorEnvelope{
		Error:    err.Error(),
		Kind:     kind,
		Blockers: tools.Blockers(err),
	})
}
