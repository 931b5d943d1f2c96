package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"credentialing/internal/db"
	"credentialing/internal/store"
	"credentialing/internal/tools"
	"credentialing/pkg/types"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	repos      *store.Repositories
	templateID string
	logger     *logrus.Logger
	workspace  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	repos := store.New(database)
	templates, err := repos.Templates.QueryTemplates(ctx, types.TemplateFilter{})
	require.NoError(t, err)
	require.Len(t, templates, 1)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &harness{repos: repos, templateID: templates[0].ID, logger: logger, workspace: t.TempDir()}
}

func (h *harness) registry(principal *types.Principal, opts ...tools.Option) *tools.Registry {
	base := []tools.Option{
		tools.WithPrincipal(tools.FixedPrincipal(principal)),
		tools.WithWorkspace(h.workspace),
		tools.WithLogger(h.logger),
	}
	return tools.New(h.repos, append(base, opts...)...)
}

func (h *harness) service(registry *tools.Registry, metrics *tools.Metrics) *Service {
	config := &types.Config{HTTPPort: 0, ReadTimeoutSec: 5, WriteTimeoutSec: 5}
	return New(config, h.logger, registry, metrics)
}

func do(t *testing.T, handler http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

var agent = &types.Principal{ActorType: types.ActorTypeAgent, ActorID: "agent-http"}

func TestHealthAndToolListing(t *testing.T) {
	h := newHarness(t)
	handler := h.service(h.registry(agent, tools.WithAllowedTools([]string{tools.ToolCreateCase, tools.ToolQueryCases})), nil).Handler()

	rec, body := do(t, handler, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, body = do(t, handler, http.MethodGet, "/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	listed := body["tools"].([]any)
	require.Len(t, listed, 2)
	first := listed[0].(map[string]any)
	assert.Equal(t, tools.ToolCreateCase, first["name"])
	assert.Equal(t, true, first["mutating"])
	assert.Equal(t, "object", first["inputSchema"].(map[string]any)["type"])

	rec, body = do(t, handler, http.MethodPost, "/tools/recordDocument", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, tools.KindNotFound, body["kind"])

	rec, _ = do(t, handler, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCallToolStatusCodes(t *testing.T) {
	h := newHarness(t)
	handler := h.service(h.registry(agent), nil).Handler()

	rec, body := do(t, handler, http.MethodPost, "/tools/createCase", `{
		"clinicianName": "Jane Doe", "profession": "RN", "npi": "1", "primaryLicenseState": "TX",
		"primaryLicenseNumber": "RN-1", "email": "jane@example.com", "phone": "1",
		"facilityId": "`+h.templateID+`", "actorId": "spoofed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := body["result"].(map[string]any)["case"].(map[string]any)
	caseID := created["id"].(string)
	assert.Equal(t, "offer_accepted", created["state"])

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		kind   string
	}{
		{"validation", "/tools/createCase", `{"email":"nope"}`, http.StatusBadRequest, tools.KindValidation},
		{"not an object", "/tools/queryCases", `"cases"`, http.StatusBadRequest, tools.KindValidation},
		{"human only", "/tools/recordApproval", `{"caseId":"` + caseID + `","decision":"approved","notes":""}`, http.StatusForbidden, tools.KindAuthorization},
		{"path safety", "/tools/recordDocument", `{"caseId":"` + caseID + `","docType":"rn_license","fileRef":"/etc/passwd"}`, http.StatusBadRequest, tools.KindPathSafety},
		{"guard", "/tools/assemblePacket", `{"caseId":"` + caseID + `"}`, http.StatusConflict, tools.KindGuard},
		{"missing finding", "/tools/getFindingDetail", `{"verificationId":"missing"}`, http.StatusNotFound, tools.KindNotFound},
		{"unknown tool", "/tools/launchRocket", `{}`, http.StatusNotFound, tools.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, handler, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}

	rec, body = do(t, handler, http.MethodPost, "/tools/assemblePacket", `{"caseId":"`+caseID+`"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.NotEmpty(t, body["blockers"])

	rec, body = do(t, handler, http.MethodPost, "/tools/getCaseTimeline", `{"caseId":"`+caseID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	events := body["result"].(map[string]any)["events"].([]any)
	require.Len(t, events, 1)
	assert.Equal(t, "agent-http", events[0].(map[string]any)["actorId"])

	rec, body = do(t, handler, http.MethodPost, "/tools/getCaseTimeline", `{"caseId":"missing"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["result"].(map[string]any)["case"])
}

func TestTrailingSlashRedirect(t *testing.T) {
	h := newHarness(t)
	handler := h.service(h.registry(agent), nil).Handler()

	rec, _ := do(t, handler, http.MethodPost, "/tools/queryCases/", `{}`)
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/tools/queryCases", rec.Header().Get("Location"))
}

func TestCallToolRoutesByPathName(t *testing.T) {
	h := newHarness(t)
	handler := h.service(h.registry(agent), nil).Handler()

	rec, body := do(t, handler, http.MethodPost, "/tools/queryTemplates", `{"jurisdiction":"TX"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	found := body["result"].([]any)
	require.Len(t, found, 1)
	assert.Equal(t, h.templateID, found[0].(map[string]any)["id"])

	rec, body = do(t, handler, http.MethodPost, "/tools/queryCases", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["result"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	metrics := tools.NewMetrics()
	handler := h.service(h.registry(agent, tools.WithMetrics(metrics)), metrics).Handler()

	rec, _ := do(t, handler, http.MethodPost, "/tools/queryTemplates", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, handler, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `credentialing_tool_calls_total{outcome="ok",tool="queryTemplates"} 1`)
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPToolHandler(t *testing.T) {
	h := newHarness(t)
	registry := h.registry(nil)
	require.NotNil(t, NewMCPServer(registry, h.logger))

	var req mcp.CallToolRequest
	req.Params.Name = tools.ToolQueryTemplates
	req.Params.Arguments = map[string]any{"jurisdiction": "TX"}

	result, err := toolHandler(registry, tools.ToolQueryTemplates, h.logger)(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var templates []map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &templates))
	require.Len(t, templates, 1)
	assert.Equal(t, "General Hospital TX", templates[0]["name"])

	req.Params.Name = tools.ToolCreateTemplate
	req.Params.Arguments = map[string]any{
		"name": "X", "jurisdiction": "CA", "requiredDocTypes": []any{}, "requiredVerificationTypes": []any{},
	}
	result, err = toolHandler(registry, tools.ToolCreateTemplate, h.logger)(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)

	var failure map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &failure))
	assert.Equal(t, tools.KindAuthorization, failure["kind"])
}
