package tools

import "fmt"

// Role is an agent role with a fixed tool allow-list.
type Role string

const (
	RoleCoordinator     Role = "Coordinator"
	RoleIntake          Role = "Intake"
	RoleDocCollector    Role = "DocCollector"
	RoleVerifier        Role = "Verifier"
	RolePacketAssembler Role = "PacketAssembler"
	RoleQualityReview   Role = "QualityReview"
)

var roleTools = map[Role][]string{
	RoleCoordinator:     {},
	RoleIntake:          {ToolCreateCase, ToolQueryCases},
	RoleDocCollector:    {ToolRecordDocument, ToolClassifyDocument, ToolQueryCases, ToolGetCaseTimeline},
	RoleVerifier:        {ToolRunVerification, ToolCheckGuards, ToolQueryCases, ToolGetCaseTimeline},
	RolePacketAssembler: {ToolAssemblePacket, ToolCheckGuards, ToolQueryCases},
	RoleQualityReview:   {ToolCheckGuards, ToolGetCaseTimeline, ToolQueryCases, ToolGetFindingDetail},
}

var roleOrder = []Role{
	RoleCoordinator,
	RoleIntake,
	RoleDocCollector,
	RoleVerifier,
	RolePacketAssembler,
	RoleQualityReview,
}

// Roles returns the six agent roles in catalog order.
func Roles() []Role {
	return append([]Role(nil), roleOrder...)
}

// RoleTools returns a copy of role's allow-list. The Coordinator gets an
// empty, non-nil list: it dispatches to other roles and calls nothing itself.
func RoleTools(role Role) ([]string, error) {
	names, ok := roleTools[role]
	if !ok {
		return nil, fmt.Errorf("unknown agent role: %s", role)
	}
	return append([]string{}, names...), nil
}

func IsToolAllowedForRole(role Role, tool string) bool {
	for _, name := range roleTools[role] {
		if name == tool {
			return true
		}
	}
	return false
}
