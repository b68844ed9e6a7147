// Package mcp exposes the test management operations as MCP tools over
// stdio. Every write tool runs capture-mutate-capture and appends one entry
// to the write-audit log, success or failure, returning the entry's id so
// the caller can undo it immediately.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/example/testdeck/internal/app"
	"github.com/example/testdeck/internal/ports/primary"
)

// Server wraps the MCP SDK server with one resolved caller identity. The
// stdio transport carries a single client, so the identity is fixed at
// construction from the token table.
type Server struct {
	MCPServer *sdkmcp.Server

	auth    primary.Auth
	folders primary.FolderService
	cases   primary.TestCaseService
	runs    primary.TestRunService
	writes  primary.WriteLogService
}

// NewServer creates an MCP server acting as the given identity.
func NewServer(auth primary.Auth, folders primary.FolderService, cases primary.TestCaseService, runs primary.TestRunService, writes primary.WriteLogService, version string) *Server {
	s := &Server{
		auth:    auth,
		folders: folders,
		cases:   cases,
		runs:    runs,
		writes:  writes,
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "testdeck", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves the MCP protocol over the transport until the client
// disconnects or ctx is canceled.
func (s *Server) Run(ctx context.Context, transport sdkmcp.Transport) error {
	return s.MCPServer.Run(ctx, transport)
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "create_folder",
		Description: "Create a folder in the test case tree.",
	}, s.handleCreateFolder)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "update_folder",
		Description: "Update a folder's name, parent, or position. Omitted fields are left unchanged.",
	}, s.handleUpdateFolder)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "delete_folder",
		Description: "Delete an empty folder. Folders still holding child folders or test cases are refused.",
	}, s.handleDeleteFolder)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_folders",
		Description: "List folders, optionally under one parent.",
	}, s.handleListFolders)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "create_test_case",
		Description: "Create a test case.",
	}, s.handleCreateTestCase)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "update_test_case",
		Description: "Update a test case's fields. Omitted fields are left unchanged.",
	}, s.handleUpdateTestCase)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "delete_test_case",
		Description: "Delete a test case and its scenarios.",
	}, s.handleDeleteTestCase)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_test_cases",
		Description: "List test cases, filterable by folder, state, and priority.",
	}, s.handleListTestCases)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "create_scenario",
		Description: "Add a Gherkin scenario to a test case.",
	}, s.handleCreateScenario)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "update_scenario",
		Description: "Update a scenario's title, gherkin, or position. Omitted fields are left unchanged.",
	}, s.handleUpdateScenario)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "create_test_run",
		Description: "Create a test run with one pending result per selected scenario.",
	}, s.handleCreateTestRun)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "record_test_result",
		Description: "Record the status and notes of one result in a test run.",
	}, s.handleRecordTestResult)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_write_log",
		Description: "List write-audit log entries, newest first.",
	}, s.handleListWriteLog)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "undo_write",
		Description: "Undo one write-audit log entry: create_* deletes the entity, update_* restores its previous state.",
	}, s.handleUndoWrite)

	s.MCPServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "testdeck://cases/{id}",
		Name:        "test-case",
		Description: "A test case with its scenarios, as JSON.",
		MIMEType:    "application/json",
	}, s.readTestCase)
}

// readTestCase serves testdeck://cases/{id}. Reads are not written to the
// audit log.
func (s *Server) readTestCase(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	uri := req.Params.URI
	rest, ok := strings.CutPrefix(uri, "testdeck://cases/")
	if !ok {
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad test case id in %s: %w", uri, err)
	}

	tc, err := s.cases.GetTestCase(ctx, id, s.auth.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read test case %d: %w", id, err)
	}
	body, err := json.MarshalIndent(tc, "", "  ")
	if err != nil {
		return nil, err
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}

// checkWrite refuses write tools for read-only tokens.
func (s *Server) checkWrite(tool string) error {
	if s.auth.ReadOnly {
		return fmt.Errorf("token is read-only, %s refused", tool)
	}
	return nil
}

// log appends one audit entry for the finished tool call and folds the
// call's own error and the logging error into one result. The entry id is
// returned even for failed calls.
func (s *Server) log(ctx context.Context, tool, entityType string, entityID int64, args any, before, after map[string]any, callErr error) (int64, error) {
	req := primary.WriteLogRequest{
		ToolName:    tool,
		ToolArgs:    toArgs(args),
		EntityType:  entityType,
		EntityID:    entityID,
		BeforeState: before,
		AfterState:  after,
		Status:      "success",
	}
	if callErr != nil {
		req.Status = "failed"
		req.ErrorMessage = callErr.Error()
	}

	logID, logErr := s.writes.LogWrite(ctx, s.auth, req)
	if callErr != nil {
		return logID, callErr
	}
	return logID, logErr
}

// toArgs flattens a tool input struct to the map the audit log stores.
func toArgs(in any) map[string]any {
	b, err := json.Marshal(in)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

// --- Folder tools --------------------------------------------------------

type createFolderInput struct {
	Name     string `json:"name" jsonschema:"folder name"`
	ParentID int64  `json:"parent_id,omitempty" jsonschema:"parent folder id (0 = root)"`
	Position int    `json:"position,omitempty" jsonschema:"sort position among siblings"`
}

type folderOutput struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	ParentID int64  `json:"parent_id,omitempty"`
	Position int    `json:"position"`
	LogID    int64  `json:"log_id,omitempty"`
}

func (s *Server) handleCreateFolder(ctx context.Context, _ *sdkmcp.CallToolRequest, in createFolderInput) (*sdkmcp.CallToolResult, folderOutput, error) {
	if err := s.checkWrite("create_folder"); err != nil {
		return nil, folderOutput{}, err
	}

	folder, err := s.folders.CreateFolder(ctx, primary.CreateFolderRequest{
		OrganizationID: s.auth.OrganizationID,
		Actor:          s.auth.UserID,
		Name:           in.Name,
		ParentID:       in.ParentID,
		Position:       in.Position,
	})

	var entityID int64
	var after map[string]any
	if err == nil {
		entityID = folder.ID
		after, _ = s.writes.GetEntityState(ctx, app.EntityFolder, folder.ID, s.auth.OrganizationID)
	}
	logID, err := s.log(ctx, "create_folder", app.EntityFolder, entityID, in, nil, after, err)
	if err != nil {
		return nil, folderOutput{LogID: logID}, err
	}
	return nil, folderOutput{
		ID: folder.ID, Name: folder.Name, ParentID: folder.ParentID,
		Position: folder.Position, LogID: logID,
	}, nil
}

type updateFolderInput struct {
	FolderID int64   `json:"folder_id" jsonschema:"id of the folder to update"`
	Name     *string `json:"name,omitempty" jsonschema:"new name"`
	ParentID *int64  `json:"parent_id,omitempty" jsonschema:"new parent folder id (0 = root)"`
	Position *int    `json:"position,omitempty" jsonschema:"new sort position"`
}

func (s *Server) handleUpdateFolder(ctx context.Context, _ *sdkmcp.CallToolRequest, in updateFolderInput) (*sdkmcp.CallToolResult, folderOutput, error) {
	if err := s.checkWrite("update_folder"); err != nil {
		return nil, folderOutput{}, err
	}

	before, _ := s.writes.GetEntityState(ctx, app.EntityFolder, in.FolderID, s.auth.OrganizationID)
	folder, err := s.folders.UpdateFolder(ctx, primary.UpdateFolderRequest{
		OrganizationID: s.auth.OrganizationID,
		Actor:          s.auth.UserID,
		FolderID:       in.FolderID,
		Name:           in.Name,
		ParentID:       in.ParentID,
		Position:       in.Position,
	})

	var after map[string]any
	if err == nil {
		after, _ = s.writes.GetEntityState(ctx, app.EntityFolder, in.FolderID, s.auth.OrganizationID)
	}
	logID, err := s.log(ctx, "update_folder", app.EntityFolder, in.FolderID, in, before, after, err)
	if err != nil {
		return nil, folderOutput{LogID: logID}, err
	}
	return nil, folderOutput{
		ID: folder.ID, Name: folder.Name, ParentID: folder.ParentID,
		Position: folder.Position, LogID: logID,
	}, nil
}

type deleteFolderInput struct {
	FolderID int64 `json:"folder_id" jsonschema:"id of the folder to delete"`
}

type deleteOutput struct {
	OK    string `json:"ok,omitempty"`
	LogID int64  `json:"log_id,omitempty"`
}

func (s *Server) handleDeleteFolder(ctx context.Context, _ *sdkmcp.CallToolRequest, in deleteFolderInput) (*sdkmcp.CallToolResult, deleteOutput, error) {
	if err := s.checkWrite("delete_folder"); err != nil {
		return nil, deleteOutput{}, err
	}

	before, _ := s.writes.GetEntityState(ctx, app.EntityFolder, in.FolderID, s.auth.OrganizationID)
	err := s.folders.DeleteFolder(ctx, in.FolderID, s.auth.OrganizationID)

	logID, err := s.log(ctx, "delete_folder", app.EntityFolder, in.FolderID, in, before, nil, err)
	if err != nil {
		return nil, deleteOutput{LogID: logID}, err
	}
	return nil, deleteOutput{OK: "folder deleted", LogID: logID}, nil
}

type listFoldersInput struct {
	ParentID int64 `json:"parent_id,omitempty" jsonschema:"restrict to children of this folder (0 = all)"`
}

type listFoldersOutput struct {
	Folders []folderOutput `json:"folders"`
}

func (s *Server) handleListFolders(ctx context.Context, _ *sdkmcp.CallToolRequest, in listFoldersInput) (*sdkmcp.CallToolResult, listFoldersOutput, error) {
	folders, err := s.folders.ListFolders(ctx, s.auth.OrganizationID, in.ParentID)
	if err != nil {
		return nil, listFoldersOutput{}, err
	}

	out := listFoldersOutput{Folders: make([]folderOutput, len(folders))}
	for i, f := range folders {
		out.Folders[i] = folderOutput{ID: f.ID, Name: f.Name, ParentID: f.ParentID, Position: f.Position}
	}
	return nil, out, nil
}

// --- Test case tools -----------------------------------------------------

type createTestCaseInput struct {
	Title    string `json:"title" jsonschema:"test case title"`
	FolderID int64  `json:"folder_id,omitempty" jsonschema:"containing folder id (0 = no folder)"`
	Position int    `json:"position,omitempty" jsonschema:"sort position"`
	Template string `json:"template,omitempty" jsonschema:"case template (default gherkin)"`
	State    string `json:"state,omitempty" jsonschema:"lifecycle state (active, draft, upcoming, retired, rejected)"`
	Priority string `json:"priority,omitempty" jsonschema:"priority (normal, high, critical)"`
	LegacyID string `json:"legacy_id,omitempty" jsonschema:"external identifier from a migrated system"`
}

type testCaseOutput struct {
	ID       int64  `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	FolderID int64  `json:"folder_id,omitempty"`
	State    string `json:"state,omitempty"`
	Priority string `json:"priority,omitempty"`
	LogID    int64  `json:"log_id,omitempty"`
}

func (s *Server) handleCreateTestCase(ctx context.Context, _ *sdkmcp.CallToolRequest, in createTestCaseInput) (*sdkmcp.CallToolResult, testCaseOutput, error) {
	if err := s.checkWrite("create_test_case"); err != nil {
		return nil, testCaseOutput{}, err
	}

	tc, err := s.cases.CreateTestCase(ctx, primary.CreateTestCaseRequest{
		OrganizationID: s.auth.OrganizationID,
		Actor:          s.auth.UserID,
		Title:          in.Title,
		FolderID:       in.FolderID,
		Position:       in.Position,
		Template:       in.Template,
		State:          in.State,
		Priority:       in.Priority,
		LegacyID:       in.LegacyID,
	})

	var entityID int64
	var after map[string]any
	if err == nil {
		entityID = tc.ID
		after, _ = s.writes.GetEntityState(ctx, app.EntityTestCase, tc.ID, s.auth.OrganizationID)
	}
	logID, err := s.log(ctx, "create_test_case", app.EntityTestCase, entityID, in, nil, after, err)
	if err != nil {
		return nil, testCaseOutput{LogID: logID}, err
	}
	return nil, testCaseOutput{
		ID: tc.ID, Title: tc.Title, FolderID: tc.FolderID,
		State: tc.State, Priority: tc.Priority, LogID: logID,
	}, nil
}

type updateTestCaseInput struct {
	TestCaseID int64   `json:"test_case_id" jsonschema:"id of the test case to update"`
	Title      *string `json:"title,omitempty" jsonschema:"new title"`
	FolderID   *int64  `json:"folder_id,omitempty" jsonschema:"new folder id (0 = no folder)"`
	Position   *int    `json:"position,omitempty" jsonschema:"new sort position"`
	Template   *string `json:"template,omitempty" jsonschema:"new template"`
	State      *string `json:"state,omitempty" jsonschema:"new lifecycle state"`
	Priority   *string `json:"priority,omitempty" jsonschema:"new priority"`
}

func (s *Server) handleUpdateTestCase(ctx context.Context, _ *sdkmcp.CallToolRequest, in updateTestCaseInput) (*sdkmcp.CallToolResult, testCaseOutput, error) {
	if err := s.checkWrite("update_test_case"); err != nil {
		return nil, testCaseOutput{}, err
	}

	before, _ := s.writes.GetEntityState(ctx, app.EntityTestCase, in.TestCaseID, s.auth.OrganizationID)
	tc, err := s.cases.UpdateTestCase(ctx, primary.UpdateTestCaseRequest{
		OrganizationID: s.auth.OrganizationID,
		Actor:          s.auth.UserID,
		TestCaseID:     in.TestCaseID,
		Title:          in.Title,
		FolderID:       in.FolderID,
		Position:       in.Position,
		Template:       in.Template,
		State:          in.State,
		Priority:       in.Priority,
	})

	var after map[string]any
	if err == nil {
		after, _ = s.writes.GetEntityState(ctx, app.EntityTestCase, in.TestCaseID, s.auth.OrganizationID)
	}
	logID, err := s.log(ctx, "update_test_case", app.EntityTestCase, in.TestCaseID, in, before, after, err)
	if err != nil {
		return nil, testCaseOutput{LogID: logID}, err
	}
	return nil, testCaseOutput{
		ID: tc.ID, Title: tc.Title, FolderID: tc.FolderID,
		State: tc.State, Priority: tc.Priority, LogID: logID,
	}, nil
}

type deleteTestCaseInput struct {
	TestCaseID int64 `json:"test_case_id" jsonschema:"id of the test case to delete"`
}

func (s *Server) handleDeleteTestCase(ctx context.Context, _ *sdkmcp.CallToolRequest, in deleteTestCaseInput) (*sdkmcp.CallToolResult, deleteOutput, error) {
	if err := s.checkWrite("delete_test_case"); err != nil {
		return nil, deleteOutput{}, err
	}

	before, _ := s.writes.GetEntityState(ctx, app.EntityTestCase, in.TestCaseID, s.auth.OrganizationID)
	err := s.cases.DeleteTestCase(ctx, in.TestCaseID, s.auth.OrganizationID, s.auth.UserID)

	logID, err := s.log(ctx, "delete_test_case", app.EntityTestCase, in.TestCaseID, in, before, nil, err)
	if err != nil {
		return nil, deleteOutput{LogID: logID}, err
	}
	return nil, deleteOutput{OK: "test case deleted", LogID: logID}, nil
}

type listTestCasesInput struct {
	FolderID int64  `json:"folder_id,omitempty" jsonschema:"restrict to one folder (0 = all)"`
	State    string `json:"state,omitempty" jsonschema:"restrict to one lifecycle state"`
	Priority string `json:"priority,omitempty" jsonschema:"restrict to one priority"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of cases to return"`
}

type listTestCasesOutput struct {
	TestCases []testCaseOutput `json:"test_cases"`
}

func (s *Server) handleListTestCases(ctx context.Context, _ *sdkmcp.CallToolRequest, in listTestCasesInput) (*sdkmcp.CallToolResult, listTestCasesOutput, error) {
	cases, err := s.cases.ListTestCases(ctx, s.auth.OrganizationID, primary.TestCaseFilters{
		FolderID: in.FolderID,
		State:    in.State,
		Priority: in.Priority,
		Limit:    in.Limit,
	})
	if err != nil {
		return nil, listTestCasesOutput{}, err
	}

	out := listTestCasesOutput{TestCases: make([]testCaseOutput, len(cases))}
	for i, tc := range cases {
		out.TestCases[i] = testCaseOutput{
			ID: tc.ID, Title: tc.Title, FolderID: tc.FolderID,
			State: tc.State, Priority: tc.Priority,
		}
	}
	return nil, out, nil
}

// --- Scenario tools ------------------------------------------------------

type createScenarioInput struct {
	TestCaseID int64  `json:"test_case_id" jsonschema:"owning test case id"`
	Title      string `json:"title" jsonschema:"scenario title"`
	Gherkin    string `json:"gherkin,omitempty" jsonschema:"gherkin body (given/when/then)"`
	Position   int    `json:"position,omitempty" jsonschema:"sort position within the case"`
}

type scenarioOutput struct {
	ID         int64  `json:"id,omitempty"`
	TestCaseID int64  `json:"test_case_id,omitempty"`
	Title      string `json:"title,omitempty"`
	LogID      int64  `json:"log_id,omitempty"`
}

func (s *Server) handleCreateScenario(ctx context.Context, _ *sdkmcp.CallToolRequest, in createScenarioInput) (*sdkmcp.CallToolResult, scenarioOutput, error) {
	if err := s.checkWrite("create_scenario"); err != nil {
		return nil, scenarioOutput{}, err
	}

	sc, err := s.cases.CreateScenario(ctx, primary.CreateScenarioRequest{
		OrganizationID: s.auth.OrganizationID,
		Actor:          s.auth.UserID,
		TestCaseID:     in.TestCaseID,
		Title:          in.Title,
		Gherkin:        in.Gherkin,
		Position:       in.Position,
	})

	var entityID int64
	var after map[string]any
	if err == nil {
		entityID = sc.ID
		after, _ = s.writes.GetEntityState(ctx, app.EntityScenario, sc.ID, s.auth.OrganizationID)
	}
	logID, err := s.log(ctx, "create_scenario", app.EntityScenario, entityID, in, nil, after, err)
	if err != nil {
		return nil, scenarioOutput{LogID: logID}, err
	}
	return nil, scenarioOutput{ID: sc.ID, TestCaseID: sc.TestCaseID, Title: sc.Title, LogID: logID}, nil
}

type updateScenarioInput struct {
	ScenarioID int64   `json:"scenario_id" jsonschema:"id of the scenario to update"`
	Title      *string `json:"title,omitempty" jsonschema:"new title"`
	Gherkin    *string `json:"gherkin,omitempty" jsonschema:"new gherkin body"`
	Position   *int    `json:"position,omitempty" jsonschema:"new sort position"`
}

func (s *Server) handleUpdateScenario(ctx context.Context, _ *sdkmcp.CallToolRequest, in updateScenarioInput) (*sdkmcp.CallToolResult, scenarioOutput, error) {
	if err := s.checkWrite("update_scenario"); err != nil {
		return nil, scenarioOutput{}, err
	}

	before, _ := s.writes.GetEntityState(ctx, app.EntityScenario, in.ScenarioID, s.auth.OrganizationID)
	sc, err := s.cases.UpdateScenario(ctx, primary.UpdateScenarioRequest{
		OrganizationID: s.auth.OrganizationID,
		Actor:          s.auth.UserID,
		ScenarioID:     in.ScenarioID,
		Title:          in.Title,
		Gherkin:        in.Gherkin,
		Position:       in.Position,
	})

	var after map[string]any
	if err == nil {
		after, _ = s.writes.GetEntityState(ctx, app.EntityScenario, in.ScenarioID, s.auth.OrganizationID)
	}
	logID, err := s.log(ctx, "update_scenario", app.EntityScenario, in.ScenarioID, in, before, after, err)
	if err != nil {
		return nil, scenarioOutput{LogID: logID}, err
	}
	return nil, scenarioOutput{ID: sc.ID, TestCaseID: sc.TestCaseID, Title: sc.Title, LogID: logID}, nil
}

// --- Test run tools ------------------------------------------------------

type createTestRunInput struct {
	Name              string  `json:"name" jsonschema:"run name"`
	ScenarioIDs       []int64 `json:"scenario_ids" jsonschema:"scenarios to execute in this run"`
	LinearIssueID     string  `json:"linear_issue_id,omitempty" jsonschema:"linked Linear issue"`
	LinearProjectID   string  `json:"linear_project_id,omitempty" jsonschema:"linked Linear project"`
	LinearMilestoneID string  `json:"linear_milestone_id,omitempty" jsonschema:"linked Linear milestone"`
}

type testRunOutput struct {
	ID      int64  `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Status  string `json:"status,omitempty"`
	Results int    `json:"results"`
	LogID   int64  `json:"log_id,omitempty"`
}

func (s *Server) handleCreateTestRun(ctx context.Context, _ *sdkmcp.CallToolRequest, in createTestRunInput) (*sdkmcp.CallToolResult, testRunOutput, error) {
	if err := s.checkWrite("create_test_run"); err != nil {
		return nil, testRunOutput{}, err
	}

	run, err := s.runs.CreateTestRun(ctx, primary.CreateTestRunRequest{
		OrganizationID:    s.auth.OrganizationID,
		Actor:             s.auth.UserID,
		Name:              in.Name,
		ScenarioIDs:       in.ScenarioIDs,
		LinearIssueID:     in.LinearIssueID,
		LinearProjectID:   in.LinearProjectID,
		LinearMilestoneID: in.LinearMilestoneID,
	})

	var entityID int64
	var after map[string]any
	if err == nil {
		entityID = run.ID
		after, _ = s.writes.GetEntityState(ctx, app.EntityTestRun, run.ID, s.auth.OrganizationID)
	}
	logID, err := s.log(ctx, "create_test_run", app.EntityTestRun, entityID, in, nil, after, err)
	if err != nil {
		return nil, testRunOutput{LogID: logID}, err
	}
	return nil, testRunOutput{
		ID: run.ID, Name: run.Name, Status: run.Status,
		Results: len(run.Results), LogID: logID,
	}, nil
}

type recordTestResultInput struct {
	ResultID int64  `json:"result_id" jsonschema:"id of the result row to record"`
	Status   string `json:"status" jsonschema:"result status (passed, failed, blocked, skipped, pending)"`
	Notes    string `json:"notes,omitempty" jsonschema:"free-form execution notes"`
}

type recordTestResultOutput struct {
	ID         int64  `json:"id,omitempty"`
	ScenarioID int64  `json:"scenario_id,omitempty"`
	Status     string `json:"status,omitempty"`
	LogID      int64  `json:"log_id,omitempty"`
}

func (s *Server) handleRecordTestResult(ctx context.Context, _ *sdkmcp.CallToolRequest, in recordTestResultInput) (*sdkmcp.CallToolResult, recordTestResultOutput, error) {
	if err := s.checkWrite("record_test_result"); err != nil {
		return nil, recordTestResultOutput{}, err
	}

	before, _ := s.writes.GetEntityState(ctx, app.EntityTestResult, in.ResultID, s.auth.OrganizationID)
	res, err := s.runs.RecordResult(ctx, primary.RecordResultRequest{
		OrganizationID: s.auth.OrganizationID,
		Actor:          s.auth.UserID,
		ResultID:       in.ResultID,
		Status:         in.Status,
		Notes:          in.Notes,
	})

	var after map[string]any
	if err == nil {
		after, _ = s.writes.GetEntityState(ctx, app.EntityTestResult, in.ResultID, s.auth.OrganizationID)
	}
	logID, err := s.log(ctx, "record_test_result", app.EntityTestResult, in.ResultID, in, before, after, err)
	if err != nil {
		return nil, recordTestResultOutput{LogID: logID}, err
	}
	return nil, recordTestResultOutput{ID: res.ID, ScenarioID: res.ScenarioID, Status: res.Status, LogID: logID}, nil
}

// --- Audit tools ---------------------------------------------------------

type listWriteLogInput struct {
	Limit         int    `json:"limit,omitempty" jsonschema:"maximum entries to return (default 50)"`
	Offset        int    `json:"offset,omitempty" jsonschema:"entries to skip for pagination"`
	UserID        string `json:"user_id,omitempty" jsonschema:"restrict to one user"`
	ToolName      string `json:"tool_name,omitempty" jsonschema:"restrict to one tool"`
	EntityType    string `json:"entity_type,omitempty" jsonschema:"restrict to one entity type"`
	IncludeUndone bool   `json:"include_undone,omitempty" jsonschema:"include entries already undone"`
}

type writeLogEntryOutput struct {
	ID           int64          `json:"id"`
	UserID       string         `json:"user_id,omitempty"`
	ClientID     string         `json:"client_id,omitempty"`
	ToolName     string         `json:"tool_name"`
	ToolArgs     map[string]any `json:"tool_args,omitempty"`
	EntityType   string         `json:"entity_type,omitempty"`
	EntityID     int64          `json:"entity_id,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	UndoneAt     int64          `json:"undone_at,omitempty"`
	UndoneBy     string         `json:"undone_by,omitempty"`
	CreatedAt    int64          `json:"created_at"`
}

type listWriteLogOutput struct {
	Entries []writeLogEntryOutput `json:"entries"`
}

const defaultListWriteLogLimit = 50

func (s *Server) handleListWriteLog(ctx context.Context, _ *sdkmcp.CallToolRequest, in listWriteLogInput) (*sdkmcp.CallToolResult, listWriteLogOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListWriteLogLimit
	}

	entries, err := s.writes.ListWrites(ctx, s.auth.OrganizationID, primary.WriteLogFilters{
		Limit:         limit,
		Offset:        in.Offset,
		UserID:        in.UserID,
		ToolName:      in.ToolName,
		EntityType:    in.EntityType,
		IncludeUndone: in.IncludeUndone,
	})
	if err != nil {
		return nil, listWriteLogOutput{}, err
	}

	out := listWriteLogOutput{Entries: make([]writeLogEntryOutput, len(entries))}
	for i, e := range entries {
		out.Entries[i] = writeLogEntryOutput{
			ID: e.ID, UserID: e.UserID, ClientID: e.ClientID,
			ToolName: e.ToolName, ToolArgs: e.ToolArgs,
			EntityType: e.EntityType, EntityID: e.EntityID,
			Status: e.Status, ErrorMessage: e.ErrorMessage,
			UndoneAt: e.UndoneAt, UndoneBy: e.UndoneBy, CreatedAt: e.CreatedAt,
		}
	}
	return nil, out, nil
}

type undoWriteInput struct {
	LogID int64 `json:"log_id" jsonschema:"id of the write log entry to undo"`
}

type undoWriteOutput struct {
	OK string `json:"ok"`
}

func (s *Server) handleUndoWrite(ctx context.Context, _ *sdkmcp.CallToolRequest, in undoWriteInput) (*sdkmcp.CallToolResult, undoWriteOutput, error) {
	if err := s.checkWrite("undo_write"); err != nil {
		return nil, undoWriteOutput{}, err
	}

	if err := s.writes.UndoWrite(ctx, in.LogID, s.auth.UserID, s.auth.OrganizationID); err != nil {
		return nil, undoWriteOutput{}, err
	}
	return nil, undoWriteOutput{OK: fmt.Sprintf("entry %d undone", in.LogID)}, nil
}
