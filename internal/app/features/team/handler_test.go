package team_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crewdeck/crewdeck/internal/app/features/team"
	"github.com/crewdeck/crewdeck/internal/app/system/httperr"
	"github.com/crewdeck/crewdeck/internal/app/system/indexes"
	"github.com/crewdeck/crewdeck/internal/domain/models"
	"github.com/crewdeck/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func timeDaysAgo(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -days)
}

func newHandler(t *testing.T) (*team.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return team.NewHandler(db, httperr.NewLogger(logger), logger), db
}

func TestHandleAdd(t *testing.T) {
	h, db := newHandler(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@test.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@test.com")
	project := fx.CreateProject(ctx, "Rollout", owner.ID)

	body := map[string]any{
		"userId":    invitee.ID.Hex(),
		"projectId": project.ID.Hex(),
		"role":      "Designer",
	}
	req := testutil.NewJSONRequest(t, "POST", "/api/team", body,
		testutil.UserFor(owner.ID, owner.FullName, owner.Email))
	rec := httptest.NewRecorder()
	h.HandleAdd(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Member models.TeamMember `json:"member"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Member.Role != "Designer" || resp.Member.AddedBy != owner.ID {
		t.Errorf("member: %+v", resp.Member)
	}

	var p models.Project
	if err := db.Collection("projects").FindOne(ctx, bson.M{"_id": project.ID}).Decode(&p); err != nil {
		t.Fatalf("load project: %v", err)
	}
	if !p.HasMember(invitee.ID) {
		t.Error("invitee missing from roster")
	}
}

func TestHandleAdd_UnknownUser(t *testing.T) {
	h, db := newHandler(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@test.com")
	project := fx.CreateProject(ctx, "Rollout", owner.ID)

	body := map[string]any{
		"userId":    "000000000000000000000000",
		"projectId": project.ID.Hex(),
		"role":      "Designer",
	}
	req := testutil.NewJSONRequest(t, "POST", "/api/team", body,
		testutil.UserFor(owner.ID, owner.FullName, owner.Email))
	rec := httptest.NewRecorder()
	h.HandleAdd(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandleAdd_Duplicate(t *testing.T) {
	h, db := newHandler(t)
	ctx := context.Background()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	fx := testutil.NewFixtures(t, db)

	owner := fx.CreateUser(ctx, "Owner", "owner@test.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@test.com")
	project := fx.CreateProject(ctx, "Rollout", owner.ID)

	body := map[string]any{
		"userId":    invitee.ID.Hex(),
		"projectId": project.ID.Hex(),
		"role":      "Designer",
	}
	req := testutil.NewJSONRequest(t, "POST", "/api/team", body,
		testutil.UserFor(owner.ID, owner.FullName, owner.Email))
	rec := httptest.NewRecorder()
	h.HandleAdd(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first add: got %d", rec.Code)
	}

	req = testutil.NewJSONRequest(t, "POST", "/api/team", body,
		testutil.UserFor(owner.ID, owner.FullName, owner.Email))
	rec = httptest.NewRecorder()
	h.HandleAdd(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate add: got %d, want 409", rec.Code)
	}

	var resp struct {
		Error string `json:"error"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Error != "this user is already part of the project" {
		t.Errorf("error: got %q", resp.Error)
	}
}

func TestHandleAdd_MissingFields(t *testing.T) {
	h, db := newHandler(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "Owner", "owner@test.com")

	req := testutil.NewJSONRequest(t, "POST", "/api/team",
		map[string]any{"role": "Designer"},
		testutil.UserFor(owner.ID, owner.FullName, owner.Email))
	rec := httptest.NewRecorder()
	h.HandleAdd(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleList_ViewerScoped(t *testing.T) {
	h, db := newHandler(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)

	alice := fx.CreateUser(ctx, "Alice", "alice@test.com")
	bob := fx.CreateUser(ctx, "Bob", "bob@test.com")
	carol := fx.CreateUser(ctx, "Carol", "carol@test.com")
	dave := fx.CreateUser(ctx, "Dave", "dave@test.com")

	p1 := fx.CreateProject(ctx, "P1", alice.ID)
	p2 := fx.CreateProject(ctx, "P2", alice.ID)
	p3 := fx.CreateProject(ctx, "P3", bob.ID)

	// Alice added Carol to two projects; Bob added Dave to his own.
	fx.CreateMembership(ctx, p1, carol.ID, alice.ID, "Engineer")
	fx.CreateMembership(ctx, p2, carol.ID, alice.ID, "Reviewer")
	fx.CreateMembership(ctx, p3, dave.ID, bob.ID, "Advisor")

	// Tasks: two for Carol in Alice's projects, one in Bob's project
	// that must not count for Alice's view.
	fx.CreateTask(ctx, p1, "a", models.TaskToDo, carol.ID)
	fx.CreateTask(ctx, p2, "b", models.TaskCompleted, carol.ID)
	fx.CreateTask(ctx, p3, "c", models.TaskToDo, carol.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/api/team",
		testutil.UserFor(alice.ID, alice.FullName, alice.Email))
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Members []struct {
			FullName  string   `json:"fullName"`
			Roles     []string `json:"roles"`
			Projects  []string `json:"projects"`
			TaskCount int64    `json:"taskCount"`
		} `json:"members"`
		Stats struct {
			TotalMembers   int     `json:"totalMembers"`
			UniqueProjects int     `json:"uniqueProjects"`
			TotalTasks     int64   `json:"totalTasks"`
			AvgTasks       float64 `json:"avgTasks"`
		} `json:"stats"`
	}
	testutil.DecodeJSON(t, rec, &resp)

	if len(resp.Members) != 1 {
		t.Fatalf("members: got %d, want 1 (Dave is Bob's)", len(resp.Members))
	}
	m := resp.Members[0]
	if m.FullName != "Carol" {
		t.Errorf("member: got %q", m.FullName)
	}
	if len(m.Roles) != 2 {
		t.Errorf("roles: %v", m.Roles)
	}
	if len(m.Projects) != 2 {
		t.Errorf("projects: %v", m.Projects)
	}
	if m.TaskCount != 2 {
		t.Errorf("taskCount should exclude Bob's project: got %d", m.TaskCount)
	}
	if resp.Stats.TotalMembers != 1 || resp.Stats.UniqueProjects != 2 || resp.Stats.TotalTasks != 2 {
		t.Errorf("stats: %+v", resp.Stats)
	}
	if resp.Stats.AvgTasks != 2 {
		t.Errorf("avgTasks: got %v", resp.Stats.AvgTasks)
	}
}

func TestHandleProfile(t *testing.T) {
	h, db := newHandler(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)

	alice := fx.CreateUser(ctx, "Alice", "alice@test.com")
	carol := fx.CreateUser(ctx, "Carol Jones", "carol@test.com")
	p1 := fx.CreateProject(ctx, "P1", alice.ID)
	fx.CreateMembership(ctx, p1, carol.ID, alice.ID, "Engineer")
	fx.CreateTask(ctx, p1, "done", models.TaskCompleted, carol.ID)
	fx.CreateTask(ctx, p1, "open", models.TaskToDo, carol.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/api/team/"+carol.ID.Hex(),
		testutil.UserFor(alice.ID, alice.FullName, alice.Email))
	req = testutil.WithChiURLParam(req, "id", carol.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Member struct {
			Initials string   `json:"initials"`
			Roles    []string `json:"roles"`
			Projects []string `json:"projects"`
		} `json:"member"`
		Stats struct {
			TotalTasks     int `json:"totalTasks"`
			CompletedTasks int `json:"completedTasks"`
			ActivityScore  int `json:"activityScore"`
		} `json:"stats"`
		RecentTasks []struct {
			Title        string `json:"title"`
			ProjectTitle string `json:"projectTitle"`
		} `json:"recentTasks"`
	}
	testutil.DecodeJSON(t, rec, &resp)

	if resp.Member.Initials != "CJ" {
		t.Errorf("initials: got %q", resp.Member.Initials)
	}
	if len(resp.Member.Roles) != 1 || resp.Member.Roles[0] != "Engineer" {
		t.Errorf("roles: %v", resp.Member.Roles)
	}
	if resp.Stats.TotalTasks != 2 || resp.Stats.CompletedTasks != 1 {
		t.Errorf("stats: %+v", resp.Stats)
	}
	if len(resp.RecentTasks) != 2 {
		t.Errorf("recentTasks: got %d", len(resp.RecentTasks))
	}
	if resp.RecentTasks[0].ProjectTitle != "P1" {
		t.Errorf("projectTitle: got %q", resp.RecentTasks[0].ProjectTitle)
	}
}

func TestHandleProfile_UnknownUser(t *testing.T) {
	h, db := newHandler(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	alice := fx.CreateUser(ctx, "Alice", "alice@test.com")

	missing := "000000000000000000000000"
	req := testutil.NewAuthenticatedRequest("GET", "/api/team/"+missing,
		testutil.UserFor(alice.ID, alice.FullName, alice.Email))
	req = testutil.WithChiURLParam(req, "id", missing)
	rec := httptest.NewRecorder()
	h.HandleProfile(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandleRemove_ScopedNoOp(t *testing.T) {
	h, db := newHandler(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)

	alice := fx.CreateUser(ctx, "Alice", "alice@test.com")
	bob := fx.CreateUser(ctx, "Bob", "bob@test.com")
	carol := fx.CreateUser(ctx, "Carol", "carol@test.com")
	bobProj := fx.CreateProject(ctx, "Bob Project", bob.ID)
	fx.CreateMembership(ctx, bobProj, carol.ID, bob.ID, "Advisor")

	// Alice never added Carol anywhere: success, nothing removed.
	req := testutil.NewAuthenticatedRequest("DELETE", "/api/team/"+carol.ID.Hex(),
		testutil.UserFor(alice.ID, alice.FullName, alice.Email))
	req = testutil.WithChiURLParam(req, "id", carol.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleRemove(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Removed int64 `json:"removed"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Removed != 0 {
		t.Errorf("removed: got %d, want 0", resp.Removed)
	}

	// Bob's entry survives.
	n, err := db.Collection("team_members").CountDocuments(ctx, bson.M{"user_id": carol.ID})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("ledger entries: got %d, want 1", n)
	}
}

func TestHandleDailyCompletions(t *testing.T) {
	h, db := newHandler(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)

	alice := fx.CreateUser(ctx, "Alice", "alice@test.com")
	carol := fx.CreateUser(ctx, "Carol", "carol@test.com")
	p1 := fx.CreateProject(ctx, "P1", alice.ID)
	fx.CreateMembership(ctx, p1, carol.ID, alice.ID, "Engineer")

	// Two completions today, one stale beyond the window.
	fx.CreateTask(ctx, p1, "a", models.TaskCompleted, carol.ID)
	fx.CreateTask(ctx, p1, "b", models.TaskCompleted, carol.ID)
	old := fx.CreateTask(ctx, p1, "c", models.TaskCompleted, carol.ID)
	if _, err := db.Collection("tasks").UpdateByID(ctx, old.ID,
		bson.M{"$set": bson.M{"updated_at": timeDaysAgo(30)}}); err != nil {
		t.Fatalf("backdate task: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("GET", "/api/team/"+carol.ID.Hex()+"/daily-completions",
		testutil.UserFor(alice.ID, alice.FullName, alice.Email))
	req = testutil.WithChiURLParam(req, "id", carol.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDailyCompletions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Completions []struct {
			Date  string `json:"date"`
			Count int    `json:"count"`
		} `json:"completions"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if len(resp.Completions) != 1 {
		t.Fatalf("completions: got %+v, want one day", resp.Completions)
	}
	if resp.Completions[0].Count != 2 {
		t.Errorf("count: got %d, want 2", resp.Completions[0].Count)
	}
}
