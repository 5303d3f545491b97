// Package memberstats provides read-only aggregate queries over the
// tasks collection for member profiles: activity score inputs, recent
// task lists, and daily completion counts. Everything here is
// viewer-scoped: callers pass the project ids the viewer added the
// member to, and nothing outside that set is counted.
package memberstats

import (
	"context"
	"sort"
	"time"

	"github.com/crewdeck/crewdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stats is the computed profile block for a member as seen by a viewer.
type Stats struct {
	TotalTasks       int `json:"totalTasks"`
	CompletedTasks   int `json:"completedTasks"`
	ProjectsInvolved int `json:"projectsInvolved"`
	ActivityScore    int `json:"activityScore"`
}

// TasksAssignedIn loads the tasks assigned to userID within projectIDs.
func TasksAssignedIn(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, projectIDs []primitive.ObjectID) ([]models.Task, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	cur, err := db.Collection("tasks").Find(ctx, bson.M{
		"assigned_to": userID,
		"project_id":  bson.M{"$in": projectIDs},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Score blends completion rate (50%), on-time rate (30%), and project
// diversity (20%, saturating at five distinct projects) into a 0–100
// activity score. Empty denominators contribute zero, not NaN.
func Score(totalTasks, completedTasks, onTimeCompleted, projectCount int) int {
	var completionRate, onTimeRate float64
	if totalTasks > 0 {
		completionRate = float64(completedTasks) / float64(totalTasks)
	}
	if completedTasks > 0 {
		onTimeRate = float64(onTimeCompleted) / float64(completedTasks)
	}
	diversity := float64(projectCount) / 5
	if diversity > 1 {
		diversity = 1
	}
	score := completionRate*50 + onTimeRate*30 + diversity*20
	return int(score + 0.5)
}

// Compute derives profile stats from a member's viewer-scoped task set.
// A completed task counts as on time when its last update (the completion
// timestamp proxy) is not after its due date.
func Compute(tasks []models.Task, projectCount int) Stats {
	total := len(tasks)
	completed := 0
	onTime := 0
	for _, t := range tasks {
		if t.Status != models.TaskCompleted {
			continue
		}
		completed++
		done := t.UpdatedAt
		if done.IsZero() {
			done = t.CreatedAt
		}
		if !done.After(t.DueDate) {
			onTime++
		}
	}
	return Stats{
		TotalTasks:       total,
		CompletedTasks:   completed,
		ProjectsInvolved: projectCount,
		ActivityScore:    Score(total, completed, onTime, projectCount),
	}
}

// RecentTasks returns up to limit tasks ordered by most recent update.
// The input slice is not modified.
func RecentTasks(tasks []models.Task, limit int) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DayCount is one day's completed-task total. Day is "YYYY-MM-DD" (UTC).
// Days with zero completions are absent; gap-filling is the caller's job.
type DayCount struct {
	Day   string `bson:"_id" json:"date"`
	Count int    `bson:"count" json:"count"`
}

// DailyCompletions groups the member's viewer-scoped completed tasks by
// completion day over the trailing window (inclusive of today).
func DailyCompletions(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, projectIDs []primitive.ObjectID, windowDays int) ([]DayCount, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}

	windowStart := time.Now().UTC().AddDate(0, 0, -(windowDays - 1))
	windowStart = time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, time.UTC)

	pipeline := []bson.M{
		{"$match": bson.M{
			"assigned_to": userID,
			"status":      models.TaskCompleted,
			"updated_at":  bson.M{"$gte": windowStart},
			"project_id":  bson.M{"$in": projectIDs},
		}},
		{"$group": bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$updated_at"}},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cur, err := db.Collection("tasks").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []DayCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
