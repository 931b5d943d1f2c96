package types

type EventType string

const (
	EventTypeStateTransition       EventType = "state_transition"
	EventTypeDocumentRecorded      EventType = "document_recorded"
	EventTypeVerificationCompleted EventType = "verification_completed"
	EventTypeApprovalRecorded      EventType = "approval_recorded"
	EventTypePacketAssembled       EventType = "packet_assembled"
	EventTypeCaseCreated           EventType = "case_created"
	EventTypeCaseClosed            EventType = "case_closed"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeStateTransition, EventTypeDocumentRecorded, EventTypeVerificationCompleted,
		EventTypeApprovalRecorded, EventTypePacketAssembled, EventTypeCaseCreated, EventTypeCaseClosed:
		return true
	}
	return false
}

type ActorType string

const (
	ActorTypeAgent  ActorType = "agent"
	ActorTypeHuman  ActorType = "human"
	ActorTypeSystem ActorType = "system"
)

func (t ActorType) Valid() bool {
	switch t {
	case ActorTypeAgent, ActorTypeHuman, ActorTypeSystem:
		return true
	}
	return false
}

// CaseEvent is an append-only audit entry.
type CaseEvent struct {
	ID          string     `db:"id" json:"id"`
	CaseID      string     `db:"case_id" json:"caseId"`
	EventType   EventType  `db:"event_type" json:"eventType"`
	ActorType   ActorType  `db:"actor_type" json:"actorType"`
	ActorID     string     `db:"actor_id" json:"actorId"`
	EvidenceRef *string    `db:"evidence_ref" json:"evidenceRef"`
	Payload     JSONObject `db:"payload" json:"payload"`
	Timestamp   Timestamp  `db:"timestamp" json:"timestamp"`
}

// Principal is the actor resolved by the hosting session. It is never read
// from tool input.
type Principal struct {
	ActorType   ActorType `json:"actorType"`
	ActorID     string    `json:"actorId"`
	HumanUserID string    `json:"humanUserId,omitempty"`
}

// Reviewer is the identity recorded on approvals.
func (p Principal) Reviewer() string {
	if p.HumanUserID != "" {
		return p.HumanUserID
	}
	return p.ActorID
}
