package validation

import (
	"fmt"
	"strings"

	"github.com/skedplan/intake/internal/entity"
	"github.com/skedplan/intake/internal/schema"
)

// CrossReferences validates the relationships between the three coerced
// collections: task assignments against worker ids, task clients against
// client ids and task dependencies against task ids. Errors are additive;
// the caller merges them onto the per-collection report via Merge.
func CrossReferences(clients []entity.Client, workers []entity.Worker, tasks []entity.Task) []ValidationError {
	clientIDs := idSet(len(clients), func(i int) string { return clients[i].ID })
	workerIDs := idSet(len(workers), func(i int) string { return workers[i].ID })
	taskIDs := idSet(len(tasks), func(i int) string { return tasks[i].ID })

	var errs []ValidationError
	for i, task := range tasks {
		num := i + 1

		if task.AssignedTo != "" {
			if _, ok := workerIDs[task.AssignedTo]; !ok {
				errs = append(errs, ValidationError{
					Row:     num,
					Field:   schema.FieldAssignedTo,
					Message: fmt.Sprintf("assigned worker %q does not exist", task.AssignedTo),
					Value:   task.AssignedTo,
				})
			}
		}

		if task.ClientID != "" {
			if _, ok := clientIDs[task.ClientID]; !ok {
				errs = append(errs, ValidationError{
					Row:     num,
					Field:   schema.FieldClientID,
					Message: fmt.Sprintf("client %q does not exist", task.ClientID),
					Value:   task.ClientID,
				})
			}
		}

		for _, dep := range task.Dependencies {
			if _, ok := taskIDs[dep]; !ok {
				errs = append(errs, ValidationError{
					Row:     num,
					Field:   schema.FieldDependencies,
					Message: fmt.Sprintf("dependency %q does not exist", dep),
					Value:   dep,
				})
			}
		}
	}

	return append(errs, circularDependencies(tasks, taskIDs)...)
}

// circularDependencies runs a DFS with a recursion stack over the dependency
// graph, restricted to dependencies that resolve to known tasks. Each task is
// visited at most once globally, so one cycle per connected cluster is
// reported, matching the first-found behaviour the report consumers expect.
func circularDependencies(tasks []entity.Task, taskIDs map[string]struct{}) []ValidationError {
	rowByID := make(map[string]int, len(tasks))
	depsByID := make(map[string][]string, len(tasks))
	for i, task := range tasks {
		if task.ID == "" {
			continue
		}
		if _, seen := rowByID[task.ID]; !seen {
			rowByID[task.ID] = i + 1
		}
		for _, dep := range task.Dependencies {
			if _, ok := taskIDs[dep]; ok {
				depsByID[task.ID] = append(depsByID[task.ID], dep)
			}
		}
	}

	visited := make(map[string]struct{})
	onStack := make(map[string]struct{})
	var stack []string
	var errs []ValidationError

	var visit func(id string)
	visit = func(id string) {
		visited[id] = struct{}{}
		onStack[id] = struct{}{}
		stack = append(stack, id)

		for _, dep := range depsByID[id] {
			if _, cycling := onStack[dep]; cycling {
				errs = append(errs, cycleErrors(stack, dep, rowByID)...)
				continue
			}
			if _, done := visited[dep]; !done {
				visit(dep)
			}
		}

		stack = stack[:len(stack)-1]
		delete(onStack, id)
	}

	for _, task := range tasks {
		if task.ID == "" {
			continue
		}
		if _, done := visited[task.ID]; !done {
			visit(task.ID)
		}
	}
	return errs
}

// cycleErrors reports one error per task on the detected cycle. The cycle is
// the stack sub-path from the first occurrence of the revisited id through
// the current node, rendered as an arrow-joined chain with the start repeated.
func cycleErrors(stack []string, repeated string, rowByID map[string]int) []ValidationError {
	start := 0
	for i, id := range stack {
		if id == repeated {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, stack[start:]...), repeated)
	chain := strings.Join(cycle, " -> ")

	errs := make([]ValidationError, 0, len(cycle)-1)
	for _, id := range cycle[:len(cycle)-1] {
		errs = append(errs, ValidationError{
			Row:     rowByID[id],
			Field:   schema.FieldDependencies,
			Message: fmt.Sprintf("circular dependency: %s", chain),
			Value:   id,
		})
	}
	return errs
}

func idSet(n int, id func(int) string) map[string]struct{} {
	set := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		if v := id(i); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
