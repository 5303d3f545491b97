package teamstore_test

import (
	"context"
	"testing"
	"time"

	teamstore "github.com/crewdeck/crewdeck/internal/app/store/team"
	"github.com/crewdeck/crewdeck/internal/app/system/indexes"
	"github.com/crewdeck/crewdeck/internal/domain/models"
	"github.com/crewdeck/crewdeck/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAdd(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	store := teamstore.New(db)

	owner := fx.CreateUser(ctx, "Owner", "owner@test.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@test.com")
	project := fx.CreateProject(ctx, "Rollout", owner.ID)

	entry, err := store.Add(ctx, project.ID, invitee.ID, "Designer", owner.ID)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if entry.Role != "Designer" || entry.AddedBy != owner.ID {
		t.Errorf("unexpected entry: %+v", entry)
	}

	// roster patched
	var p models.Project
	if err := db.Collection("projects").FindOne(ctx, bson.M{"_id": project.ID}).Decode(&p); err != nil {
		t.Fatalf("load project: %v", err)
	}
	if !p.HasMember(invitee.ID) {
		t.Error("invitee missing from roster after Add")
	}
}

func TestAdd_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	store := teamstore.New(db)

	owner := fx.CreateUser(ctx, "Owner", "owner@test.com")
	project := fx.CreateProject(ctx, "Rollout", owner.ID)

	_, err := store.Add(ctx, project.ID, primitive.NewObjectID(), "Designer", owner.ID)
	if err != teamstore.ErrUserNotFound {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}

func TestAdd_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	fx := testutil.NewFixtures(t, db)
	store := teamstore.New(db)

	owner := fx.CreateUser(ctx, "Owner", "owner@test.com")
	other := fx.CreateUser(ctx, "Other", "other@test.com")
	invitee := fx.CreateUser(ctx, "Invitee", "invitee@test.com")
	project := fx.CreateProject(ctx, "Rollout", owner.ID)

	if _, err := store.Add(ctx, project.ID, invitee.ID, "Designer", owner.ID); err != nil {
		t.Fatalf("first Add: %v", err)
	}

	// Same pair again, even from a different inviter with a different
	// role, is a conflict.
	_, err := store.Add(ctx, project.ID, invitee.ID, "Engineer", other.ID)
	if err != teamstore.ErrDuplicateMembership {
		t.Errorf("got %v, want ErrDuplicateMembership", err)
	}
}

func TestForViewer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	store := teamstore.New(db)

	alice := fx.CreateUser(ctx, "Alice", "alice@test.com")
	bob := fx.CreateUser(ctx, "Bob", "bob@test.com")
	carol := fx.CreateUser(ctx, "Carol", "carol@test.com")

	p1 := fx.CreateProject(ctx, "P1", alice.ID)
	p2 := fx.CreateProject(ctx, "P2", alice.ID)
	p3 := fx.CreateProject(ctx, "P3", bob.ID)

	// Alice added Carol twice with the same role; Bob added her earliest.
	early := fx.CreateMembership(ctx, p3, carol.ID, bob.ID, "Advisor")
	fx.CreateMembership(ctx, p1, carol.ID, alice.ID, "Engineer")
	fx.CreateMembership(ctx, p2, carol.ID, alice.ID, "Engineer")

	// Backdate Bob's entry so it is unambiguously the earliest.
	backdated := time.Now().UTC().AddDate(0, -1, 0)
	if _, err := db.Collection("team_members").UpdateByID(ctx, early.ID,
		bson.M{"$set": bson.M{"created_at": backdated}}); err != nil {
		t.Fatalf("backdate entry: %v", err)
	}

	m, err := store.ForViewer(ctx, carol.ID, alice.ID)
	if err != nil {
		t.Fatalf("ForViewer: %v", err)
	}

	if len(m.Roles) != 1 || m.Roles[0] != "Engineer" {
		t.Errorf("roles should be viewer-scoped and deduped: %v", m.Roles)
	}
	if len(m.ProjectIDs) != 2 {
		t.Errorf("projects should be only Alice's entries: %v", m.ProjectIDs)
	}
	// Join date looks across all inviters.
	if m.DateJoined.After(backdated.Add(time.Minute)) {
		t.Errorf("DateJoined should be Bob's backdated entry, got %v", m.DateJoined)
	}
}

func TestRemoveScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	store := teamstore.New(db)

	alice := fx.CreateUser(ctx, "Alice", "alice@test.com")
	bob := fx.CreateUser(ctx, "Bob", "bob@test.com")
	carol := fx.CreateUser(ctx, "Carol", "carol@test.com")

	aliceProj := fx.CreateProject(ctx, "Alice Project", alice.ID)
	bobProj := fx.CreateProject(ctx, "Bob Project", bob.ID)

	fx.CreateMembership(ctx, aliceProj, carol.ID, alice.ID, "Engineer")
	fx.CreateMembership(ctx, bobProj, carol.ID, bob.ID, "Advisor")

	assigned := fx.CreateTask(ctx, aliceProj, "Assigned", models.TaskToDo, carol.ID)
	untouched := fx.CreateTask(ctx, bobProj, "Untouched", models.TaskToDo, carol.ID)

	result, err := store.RemoveScoped(ctx, carol.ID, alice.ID)
	if err != nil {
		t.Fatalf("RemoveScoped: %v", err)
	}
	if result.EntriesDeleted != 1 {
		t.Errorf("entries deleted: got %d, want 1", result.EntriesDeleted)
	}
	if result.TasksUnassigned != 1 {
		t.Errorf("tasks unassigned: got %d, want 1", result.TasksUnassigned)
	}

	// Carol left Alice's roster but stays on Bob's.
	var p models.Project
	if err := db.Collection("projects").FindOne(ctx, bson.M{"_id": aliceProj.ID}).Decode(&p); err != nil {
		t.Fatalf("load project: %v", err)
	}
	if p.HasMember(carol.ID) {
		t.Error("carol should be off Alice's roster")
	}
	if err := db.Collection("projects").FindOne(ctx, bson.M{"_id": bobProj.ID}).Decode(&p); err != nil {
		t.Fatalf("load project: %v", err)
	}
	if !p.HasMember(carol.ID) {
		t.Error("carol should remain on Bob's roster")
	}

	// Task in Alice's project lost the assignment; Bob's kept it. Both
	// tasks still exist.
	var task models.Task
	if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": assigned.ID}).Decode(&task); err != nil {
		t.Fatalf("load task: %v", err)
	}
	if task.IsAssignee(carol.ID) {
		t.Error("carol should be unassigned in Alice's project")
	}
	if err := db.Collection("tasks").FindOne(ctx, bson.M{"_id": untouched.ID}).Decode(&task); err != nil {
		t.Fatalf("load task: %v", err)
	}
	if !task.IsAssignee(carol.ID) {
		t.Error("carol should stay assigned in Bob's project")
	}
}

func TestRemoveScoped_NoEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures(t, db)
	store := teamstore.New(db)

	alice := fx.CreateUser(ctx, "Alice", "alice@test.com")
	carol := fx.CreateUser(ctx, "Carol", "carol@test.com")

	result, err := store.RemoveScoped(ctx, carol.ID, alice.ID)
	if err != nil {
		t.Fatalf("RemoveScoped should be a no-op, got %v", err)
	}
	if result.EntriesDeleted != 0 {
		t.Errorf("no-op should delete nothing, got %d", result.EntriesDeleted)
	}
}
