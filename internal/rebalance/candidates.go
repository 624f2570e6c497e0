package rebalance

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dimitrije/taskflow-api/internal/models"
)

// SelectCandidates returns at most limit movable tasks, lowest priority first and
// oldest first within a priority. High-priority and done tasks are never returned.
func SelectCandidates(tasks []models.Task, limit int) []models.Task {
	if limit <= 0 {
		return nil
	}

	eligible := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Movable() {
			eligible = append(eligible, t)
		}
	}

	slices.SortStableFunc(eligible, func(a, b models.Task) int {
		if d := a.Priority.Rank() - b.Priority.Rank(); d != 0 {
			return d
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible
}

func ReassignedMessage(title, from, to string) string {
	return fmt.Sprintf("Task '%s' reassigned from '%s' to '%s'.", title, from, to)
}

func AssignedMessage(title, to string) string {
	return fmt.Sprintf("Task '%s' assigned to '%s'.", title, to)
}

func UnassignedMessage(title, from string) string {
	return fmt.Sprintf("Task '%s' unassigned from '%s'.", title, from)
}

// AssignmentMessage phrases an assignee change; empty names mean unassigned.
func AssignmentMessage(title, from, to string) string {
	switch {
	case from == "":
		return AssignedMessage(title, to)
	case to == "":
		return UnassignedMessage(title, from)
	default:
		return ReassignedMessage(title, from, to)
	}
}
