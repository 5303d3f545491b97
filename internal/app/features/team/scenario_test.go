package team_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crewdeck/crewdeck/internal/app/features/projects"
	"github.com/crewdeck/crewdeck/internal/app/features/tasks"
	"github.com/crewdeck/crewdeck/internal/app/features/team"
	projectstore "github.com/crewdeck/crewdeck/internal/app/store/projects"
	taskstore "github.com/crewdeck/crewdeck/internal/app/store/tasks"
	"github.com/crewdeck/crewdeck/internal/app/system/httperr"
	"github.com/crewdeck/crewdeck/internal/domain/models"
	"github.com/crewdeck/crewdeck/internal/testutil"
	"go.uber.org/zap"
)

// TestMembershipLifecycle walks a project from creation through task
// completion and member removal, checking progress and assignment
// state at each step.
func TestMembershipLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	logger := zap.NewNop()
	errLog := httperr.NewLogger(logger)

	projectsH := projects.NewHandler(db, errLog, logger)
	tasksH := tasks.NewHandler(db, errLog, logger)
	teamH := team.NewHandler(db, errLog, logger)

	owner := fx.CreateUser(ctx, "Olive Owner", "olive@test.com")
	dev := fx.CreateUser(ctx, "Devon Dev", "devon@test.com")
	caller := testutil.UserFor(owner.ID, owner.FullName, owner.Email)

	// Project with a fixed January window.
	req := testutil.NewJSONRequest(t, "POST", "/api/projects", map[string]any{
		"title":       "Launch",
		"description": "January launch work",
		"startDate":   "2024-01-01",
		"dueDate":     "2024-01-31",
	}, caller)
	rec := httptest.NewRecorder()
	projectsH.HandleCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: got %d, body %s", rec.Code, rec.Body.String())
	}
	var projResp struct {
		Project models.Project `json:"project"`
	}
	testutil.DecodeJSON(t, rec, &projResp)
	project := projResp.Project

	// Add the dev to the roster.
	req = testutil.NewJSONRequest(t, "POST", "/api/team", map[string]any{
		"userId":    dev.ID.Hex(),
		"projectId": project.ID.Hex(),
		"role":      "Dev",
	}, caller)
	rec = httptest.NewRecorder()
	teamH.HandleAdd(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member: got %d, body %s", rec.Code, rec.Body.String())
	}

	// A task inside the window succeeds.
	req = testutil.NewJSONRequest(t, "POST", "/api/tasks", map[string]any{
		"title":       "Ship it",
		"description": "Final packaging",
		"project":     project.ID.Hex(),
		"priority":    models.PriorityHigh,
		"status":      "To Do",
		"dueDate":     "2024-01-15",
		"assignedTo":  []string{dev.ID.Hex()},
	}, caller)
	rec = httptest.NewRecorder()
	tasksH.HandleCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: got %d, body %s", rec.Code, rec.Body.String())
	}
	var taskResp struct {
		Task models.Task `json:"task"`
	}
	testutil.DecodeJSON(t, rec, &taskResp)
	task := taskResp.Task

	// Completing the only task drives progress to 100.
	req = testutil.NewJSONRequest(t, "PUT", "/api/tasks/"+task.ID.Hex(),
		map[string]any{"status": "Completed"}, caller)
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec = httptest.NewRecorder()
	tasksH.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete task: got %d, body %s", rec.Code, rec.Body.String())
	}
	reloaded, err := projectstore.New(db).GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if reloaded.Progress != 100 {
		t.Errorf("progress after completion: got %d, want 100", reloaded.Progress)
	}

	// A due date one day past the project window is rejected.
	req = testutil.NewJSONRequest(t, "POST", "/api/tasks", map[string]any{
		"title":       "Stragglers",
		"description": "Follow-up fixes",
		"project":     project.ID.Hex(),
		"priority":    models.PriorityLow,
		"dueDate":     "2024-02-01",
		"assignedTo":  []string{dev.ID.Hex()},
	}, caller)
	rec = httptest.NewRecorder()
	tasksH.HandleCreate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-window task: got %d, body %s", rec.Code, rec.Body.String())
	}

	// Removing the dev unassigns without deleting the finished task.
	req = testutil.NewAuthenticatedRequest("DELETE", "/api/team/"+dev.ID.Hex(), caller)
	req = testutil.WithChiURLParam(req, "id", dev.ID.Hex())
	rec = httptest.NewRecorder()
	teamH.HandleRemove(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove member: got %d, body %s", rec.Code, rec.Body.String())
	}

	survivor, err := taskstore.New(db).GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if len(survivor.AssignedTo) != 0 {
		t.Errorf("assignedTo after removal: got %v, want empty", survivor.AssignedTo)
	}
	if survivor.Status != models.TaskCompleted {
		t.Errorf("status after removal: got %q", survivor.Status)
	}

	reloaded, err = projectstore.New(db).GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if reloaded.Progress != 100 {
		t.Errorf("progress after removal: got %d, want 100", reloaded.Progress)
	}
	if reloaded.HasMember(dev.ID) {
		t.Error("roster still contains removed member")
	}
}
