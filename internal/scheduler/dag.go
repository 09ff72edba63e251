package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dayplanner/backend/internal/models"
)

var ErrDependencyCycle = errors.New("dependency cycle")

// VerifyDAG reports the first dependency cycle among tasks. Dependencies on
// ids outside the set are ignored here; Build reports them as unscheduled.
func VerifyDAG(tasks []models.Task) error {
	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		t, ok := byID[id]
		if !ok {
			return nil
		}
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, dep := range t.DependsOn {
			if onStack[dep] {
				return fmt.Errorf("%w: %s", ErrDependencyCycle, cyclePath(path, dep))
			}
			if !visited[dep] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		onStack[id] = false
		path = path[:len(path)-1]
		return nil
	}

	for _, t := range tasks {
		if !visited[t.ID] {
			if err := visit(t.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func cyclePath(path []string, back string) string {
	for i, id := range path {
		if id == back {
			return strings.Join(append(append([]string{}, path[i:]...), back), " -> ")
		}
	}
	return back
}
