package rules

import (
	"fmt"
	"sort"

	"github.com/skedplan/intake/internal/entity"
)

// Suggestion is an advisory rule candidate derived from patterns in the
// validated collections. Nothing is created until a caller accepts it.
type Suggestion struct {
	Type       Type       `json:"type"`
	Reason     string     `json:"reason"`
	Parameters Parameters `json:"parameters"`
}

// coRunThreshold is the number of clients that must request the same task
// pair before a co-run rule is suggested.
const coRunThreshold = 2

// Suggest scans the coerced collections for recurring patterns worth turning
// into rules: task pairs frequently requested together become co-run
// candidates, and worker groups whose members advertise more per-phase load
// than slots become load-limit candidates.
func Suggest(clients []entity.Client, workers []entity.Worker, tasks []entity.Task) []Suggestion {
	var out []Suggestion
	out = append(out, suggestCoRuns(clients, tasks)...)
	out = append(out, suggestLoadLimits(workers)...)
	return out
}

func suggestCoRuns(clients []entity.Client, tasks []entity.Task) []Suggestion {
	known := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		known[t.ID] = struct{}{}
	}

	type pair struct{ a, b string }
	counts := make(map[pair]int)
	for _, c := range clients {
		requested := make([]string, 0, len(c.RequestedTaskIDs))
		for _, id := range c.RequestedTaskIDs {
			if _, ok := known[id]; ok {
				requested = append(requested, id)
			}
		}
		sort.Strings(requested)
		for i := 0; i < len(requested); i++ {
			for j := i + 1; j < len(requested); j++ {
				if requested[i] != requested[j] {
					counts[pair{requested[i], requested[j]}]++
				}
			}
		}
	}

	pairs := make([]pair, 0, len(counts))
	for p, n := range counts {
		if n >= coRunThreshold {
			pairs = append(pairs, p)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	suggestions := make([]Suggestion, 0, len(pairs))
	for _, p := range pairs {
		suggestions = append(suggestions, Suggestion{
			Type:   TypeCoRun,
			Reason: fmt.Sprintf("tasks %s and %s are requested together by %d clients", p.a, p.b, counts[p]),
			Parameters: &CoRunParams{
				TaskIDs: []string{p.a, p.b},
			},
		})
	}
	return suggestions
}

func suggestLoadLimits(workers []entity.Worker) []Suggestion {
	type groupStats struct {
		slots   int
		maxLoad int
		count   int
	}
	groups := make(map[string]*groupStats)
	for _, w := range workers {
		if w.WorkerGroup == "" {
			continue
		}
		g, ok := groups[w.WorkerGroup]
		if !ok {
			g = &groupStats{}
			groups[w.WorkerGroup] = g
		}
		g.slots += len(w.AvailableSlots)
		g.maxLoad += w.MaxLoadPerPhase
		g.count++
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var suggestions []Suggestion
	for _, name := range names {
		g := groups[name]
		avgSlots := g.slots / g.count
		avgLoad := g.maxLoad / g.count
		if avgLoad <= avgSlots || avgSlots < 1 {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Type: TypeLoadLimit,
			Reason: fmt.Sprintf("group %q advertises an average load of %d per phase across only %d available slots",
				name, avgLoad, avgSlots),
			Parameters: &LoadLimitParams{
				WorkerGroup:      name,
				MaxSlotsPerPhase: avgSlots,
			},
		})
	}
	return suggestions
}
