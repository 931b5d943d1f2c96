package db

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clinicians (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		profession TEXT NOT NULL,
		npi TEXT NOT NULL,
		primary_license_state TEXT NOT NULL,
		primary_license_number TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS facility_templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		jurisdiction TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		required_doc_types TEXT NOT NULL DEFAULT '[]',
		required_verification_types TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		clinician_id TEXT NOT NULL REFERENCES clinicians(id) ON DELETE CASCADE,
		facility_id TEXT NOT NULL REFERENCES facility_templates(id) ON DELETE RESTRICT,
		state TEXT NOT NULL CHECK (state IN (
			'offer_accepted', 'documents_requested', 'documents_collected',
			'verification_in_progress', 'verification_complete', 'packet_assembled',
			'submitted', 'cleared', 'closed'
		)),
		start_date TEXT,
		template_version INTEGER NOT NULL,
		required_doc_types_snapshot TEXT NOT NULL DEFAULT '[]',
		required_verification_types_snapshot TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		doc_type TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'received', 'verified', 'rejected')),
		file_ref TEXT,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS verifications (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		verification_type TEXT NOT NULL,
		source TEXT NOT NULL,
		pass INTEGER NOT NULL CHECK (pass IN (0, 1)),
		evidence TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS approvals (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		verification_id TEXT REFERENCES verifications(id) ON DELETE CASCADE,
		decision TEXT NOT NULL CHECK (decision IN ('approved', 'rejected', 'waiver')),
		reviewer TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS case_events (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		event_type TEXT NOT NULL CHECK (event_type IN (
			'state_transition', 'document_recorded', 'verification_completed',
			'approval_recorded', 'packet_assembled', 'case_created', 'case_closed'
		)),
		actor_type TEXT NOT NULL CHECK (actor_type IN ('agent', 'human', 'system')),
		actor_id TEXT NOT NULL,
		evidence_ref TEXT,
		payload TEXT NOT NULL DEFAULT '{}',
		timestamp TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_clinician_id ON cases(clinician_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_facility_id ON cases(facility_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_state ON cases(state)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_case_id ON documents(case_id)`,
	`CREATE INDEX IF NOT EXISTS idx_verifications_case_id ON verifications(case_id)`,
	`CREATE INDEX IF NOT EXISTS idx_case_events_case_id ON case_events(case_id)`,
}
