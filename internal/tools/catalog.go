package tools

const (
	ToolCreateCase       = "createCase"
	ToolQueryCases       = "queryCases"
	ToolGetCaseTimeline  = "getCaseTimeline"
	ToolCheckGuards      = "checkGuards"
	ToolTransitionState  = "transitionState"
	ToolRecordDocument   = "recordDocument"
	ToolClassifyDocument = "classifyDocument"
	ToolRunVerification  = "runVerification"
	ToolGetFindingDetail = "getFindingDetail"
	ToolRecordApproval   = "recordApproval"
	ToolCreateTemplate   = "createTemplate"
	ToolUpdateTemplate   = "updateTemplate"
	ToolQueryTemplates   = "queryTemplates"
	ToolAssemblePacket   = "assemblePacket"
)

// catalog is the static tool set. Registries filter it by allow-list at
// construction time.
func catalog() []*Tool {
	return []*Tool{
		newTool(ToolCreateCase, "Create a clinician and credentialing case from facility template requirements.", true, createCase),
		newTool(ToolQueryCases, "Query credentialing cases by optional state and facility filters.", false, queryCases),
		newTool(ToolGetCaseTimeline, "Get the full case timeline and supporting records for a case.", false, getCaseTimeline),
		newTool(ToolCheckGuards, "Check transition blockers for a target state.", false, checkGuards),
		newTool(ToolTransitionState, "Advance a case to the next state if transition guards pass.", true, transitionState),
		newTool(ToolRecordDocument, "Record a document for a case and write an audit event.", true, recordDocument),
		newTool(ToolClassifyDocument, "Classify a recorded document, falling back to its stored type.", false, classifyDocument),
		newTool(ToolRunVerification, "Run a verification through its adapter and persist the evidence.", true, runVerification),
		newTool(ToolGetFindingDetail, "Get a verification finding and its latest approval.", false, getFindingDetail),
		newTool(ToolRecordApproval, "Record a human approval decision for a finding or case submission.", true, recordApproval),
		newTool(ToolCreateTemplate, "Create a facility template (version starts at 1).", true, createTemplate),
		newTool(ToolUpdateTemplate, "Update a facility template and bump its version.", true, updateTemplate),
		newTool(ToolQueryTemplates, "Query facility templates by optional filters.", false, queryTemplates),
		newTool(ToolAssemblePacket, "Assemble the packet manifest once documents, verifications and approvals are complete.", true, assemblePacket),
	}
}
