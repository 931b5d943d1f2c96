package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"credentialing/internal/db"
	"credentialing/internal/utils"
	"credentialing/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()

	database, err := db.Open(context.Background(), db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return New(database)
}

func defaultTemplate(t *testing.T, repos *Repositories) *types.FacilityTemplate {
	t.Helper()

	templates, err := repos.Templates.QueryTemplates(context.Background(), types.TemplateFilter{})
	require.NoError(t, err)
	require.Len(t, templates, 1)
	return templates[0]
}

func createTestCase(t *testing.T, repos *Repositories) *types.Case {
	t.Helper()
	ctx := context.Background()

	clinician := &types.Clinician{
		Name:                 "Jane Doe",
		Profession:           "RN",
		NPI:                  "1234567890",
		PrimaryLicenseState:  "TX",
		PrimaryLicenseNumber: "RN-1",
		Email:                "jane@example.com",
		Phone:                "555-0100",
	}
	require.NoError(t, repos.Clinicians.CreateClinician(ctx, clinician))

	c := &types.Case{ClinicianID: clinician.ID, FacilityID: defaultTemplate(t, repos).ID}
	require.NoError(t, repos.Cases.CreateCase(ctx, c))
	return c
}

func TestCreateCaseSnapshotsTemplate(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c := createTestCase(t, repos)

	assert.Equal(t, types.CaseStateOfferAccepted, c.State)
	assert.Equal(t, 1, c.TemplateVersion)
	assert.Equal(t, types.StringList{"rn_license", "bls_cert", "tb_test", "physical", "background_check"}, c.RequiredDocTypesSnapshot)
	assert.Equal(t, types.StringList{"nursys", "oig_sam"}, c.RequiredVerificationTypesSnapshot)

	updated, err := repos.Templates.UpdateTemplate(ctx, c.FacilityID, types.TemplateUpdate{
		RequiredDocTypes: []string{"fit_test"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)

	stored, err := repos.Cases.CaseByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.TemplateVersion)
	assert.Equal(t, c.RequiredDocTypesSnapshot, stored.RequiredDocTypesSnapshot)
}

func TestCreateCaseRequiresTemplate(t *testing.T) {
	repos := newTestRepos(t)

	err := repos.Cases.CreateCase(context.Background(), &types.Case{ClinicianID: "x", FacilityID: "missing"})
	var notFound *types.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "missing", notFound.ID)
}

func TestLookupsReturnNilWhenMissing(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	c, err := repos.Cases.CaseByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, c)

	doc, err := repos.Documents.LatestDocumentByType(ctx, "nope", "rn_license")
	assert.NoError(t, err)
	assert.Nil(t, doc)

	approval, err := repos.Approvals.LatestCaseApproval(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, approval)

	events, err := repos.Events.Timeline(ctx, "nope")
	assert.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestLatestDocumentOrdering(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c := createTestCase(t, repos)

	older := &types.Document{CaseID: c.ID, DocType: "rn_license", Status: types.DocumentStatusReceived, FileRef: utils.StringPtr("/a")}
	require.NoError(t, repos.Documents.CreateDocument(ctx, older))
	newer := &types.Document{CaseID: c.ID, DocType: "rn_license", Status: types.DocumentStatusRejected}
	require.NoError(t, repos.Documents.CreateDocument(ctx, newer))

	latest, err := repos.Documents.LatestDocumentByType(ctx, c.ID, "rn_license")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.ID, latest.ID)
	assert.Equal(t, types.DocumentStatusRejected, latest.Status)
	assert.Nil(t, latest.FileRef)

	t.Run("ties broken by id descending", func(t *testing.T) {
		at := types.NewTimestamp(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
		a := &types.Document{CaseID: c.ID, DocType: "tb_test", Status: types.DocumentStatusPending, CreatedAt: at}
		b := &types.Document{CaseID: c.ID, DocType: "tb_test", Status: types.DocumentStatusPending, CreatedAt: at}
		require.NoError(t, repos.Documents.CreateDocument(ctx, a))
		require.NoError(t, repos.Documents.CreateDocument(ctx, b))

		want := a.ID
		if b.ID > a.ID {
			want = b.ID
		}

		latest, err := repos.Documents.LatestDocumentByType(ctx, c.ID, "tb_test")
		require.NoError(t, err)
		assert.Equal(t, want, latest.ID)
	})
}

func TestLatestApprovals(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c := createTestCase(t, repos)

	verification := &types.Verification{CaseID: c.ID, VerificationType: "oig_sam", Source: "mock:oig_sam"}
	require.NoError(t, repos.Verifications.CreateVerification(ctx, verification))

	waiver := &types.Approval{CaseID: c.ID, VerificationID: &verification.ID, Decision: types.DecisionWaiver, Reviewer: "h"}
	require.NoError(t, repos.Approvals.CreateApproval(ctx, waiver))
	caseLevel := &types.Approval{CaseID: c.ID, Decision: types.DecisionApproved, Reviewer: "h"}
	require.NoError(t, repos.Approvals.CreateApproval(ctx, caseLevel))
	rejected := &types.Approval{
		CaseID:         c.ID,
		VerificationID: &verification.ID,
		Decision:       types.DecisionRejected,
		Reviewer:       "h",
		CreatedAt:      types.NewTimestamp(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, repos.Approvals.CreateApproval(ctx, rejected))

	latest, err := repos.Approvals.LatestApprovalByVerification(ctx, verification.ID)
	require.NoError(t, err)
	assert.Equal(t, rejected.ID, latest.ID)

	latestCase, err := repos.Approvals.LatestCaseApproval(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, latestCase)
	assert.Equal(t, caseLevel.ID, latestCase.ID)
	assert.Nil(t, latestCase.VerificationID)

	all, err := repos.Approvals.ApprovalsByCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestJSONColumnsParseDefensively(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c := createTestCase(t, repos)

	doc := &types.Document{CaseID: c.ID, DocType: "physical", Status: types.DocumentStatusPending}
	require.NoError(t, repos.Documents.CreateDocument(ctx, doc))
	verification := &types.Verification{CaseID: c.ID, VerificationType: "nursys", Source: "mock", Pass: true}
	require.NoError(t, repos.Verifications.CreateVerification(ctx, verification))

	require.NoError(t, repos.DB.Exec(ctx, `UPDATE documents SET metadata = 'not json'`))
	require.NoError(t, repos.DB.Exec(ctx, `UPDATE verifications SET evidence = '[1,2'`))
	require.NoError(t, repos.DB.Exec(ctx, `UPDATE cases SET required_doc_types_snapshot = '{"a":1}'`))

	storedDoc, err := repos.Documents.DocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, types.JSONObject{}, storedDoc.Metadata)

	storedVerification, err := repos.Verifications.VerificationByID(ctx, verification.ID)
	require.NoError(t, err)
	assert.True(t, storedVerification.Pass)
	assert.Empty(t, storedVerification.Evidence.SourceURL)
	assert.NotNil(t, storedVerification.Evidence.ResponseData)

	storedCase, err := repos.Cases.CaseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StringList{}, storedCase.RequiredDocTypesSnapshot)
}

func TestUpdateCaseStateIsConditional(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c := createTestCase(t, repos)

	ok, err := repos.Cases.UpdateCaseState(ctx, c.ID, types.CaseStateOfferAccepted, types.CaseStateDocumentsRequested)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Cases.UpdateCaseState(ctx, c.ID, types.CaseStateOfferAccepted, types.CaseStateClosed)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repos.Cases.CaseByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.CaseStateDocumentsRequested, stored.State)
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt.Time))
}

func TestQueryCasesAndTemplates(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	first := createTestCase(t, repos)
	second := createTestCase(t, repos)

	_, err := repos.Cases.UpdateCaseState(ctx, first.ID, types.CaseStateOfferAccepted, types.CaseStateClosed)
	require.NoError(t, err)

	all, err := repos.Cases.QueryCases(ctx, types.CaseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)

	closed := types.CaseStateClosed
	state := types.CaseStateOfferAccepted
	open, err := repos.Cases.QueryCases(ctx, types.CaseFilter{State: &state})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)

	byClinician, err := repos.Cases.QueryCases(ctx, types.CaseFilter{ClinicianID: &second.ClinicianID})
	require.NoError(t, err)
	require.Len(t, byClinician, 1)
	assert.Equal(t, second.ID, byClinician[0].ID)

	none, err := repos.Cases.QueryCases(ctx, types.CaseFilter{ClinicianID: &second.ClinicianID, State: &closed})
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, repos.Templates.CreateTemplate(ctx, &types.FacilityTemplate{Name: "Mercy WA", Jurisdiction: "WA"}))
	name := "Mercy"
	found, err := repos.Templates.QueryTemplates(ctx, types.TemplateFilter{Name: &name})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "WA", found[0].Jurisdiction)
	assert.Equal(t, types.StringList{}, found[0].RequiredDocTypes)

	count, err := repos.Templates.CountTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestEventsAppendInOrder(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c := createTestCase(t, repos)

	for _, eventType := range []types.EventType{types.EventTypeCaseCreated, types.EventTypeDocumentRecorded} {
		require.NoError(t, repos.Events.AppendEvent(ctx, &types.CaseEvent{
			CaseID:    c.ID,
			EventType: eventType,
			ActorType: types.ActorTypeSystem,
			ActorID:   "test",
		}))
	}

	events, err := repos.Events.Timeline(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, types.EventTypeCaseCreated, events[0].EventType)
	assert.Equal(t, types.EventTypeDocumentRecorded, events[1].EventType)
	assert.Nil(t, events[0].EvidenceRef)
	assert.Equal(t, types.JSONObject{}, events[0].Payload)
}

func TestAppendEventRejectsUnknownTypes(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c := createTestCase(t, repos)

	tests := []struct {
		name  string
		event types.CaseEvent
	}{
		{name: "event type", event: types.CaseEvent{EventType: "case_deleted", ActorType: types.ActorTypeAgent, ActorID: "a"}},
		{name: "actor type", event: types.CaseEvent{EventType: types.EventTypeCaseCreated, ActorType: "robot", ActorID: "a"}},
		{name: "actor id", event: types.CaseEvent{EventType: types.EventTypeCaseCreated, ActorType: types.ActorTypeAgent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := tt.event
			event.CaseID = c.ID
			err := repos.Events.AppendEvent(ctx, &event)

			var repoErr *RepositoryError
			require.ErrorAs(t, err, &repoErr)
			assert.Contains(t, repoErr.Message, tt.name)
		})
	}

	events, err := repos.Events.Timeline(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRepositoryErrorsAreWrapped(t *testing.T) {
	repos := newTestRepos(t)

	err := repos.Documents.CreateDocument(context.Background(), &types.Document{
		CaseID:  "missing",
		DocType: "rn_license",
		Status:  types.DocumentStatusPending,
	})
	require.Error(t, err)

	var repoErr *RepositoryError
	require.True(t, errors.As(err, &repoErr))
	assert.Equal(t, "document", repoErr.Repository)
	assert.Equal(t, "create", repoErr.Operation)
	assert.NotNil(t, repoErr.Unwrap())
}
