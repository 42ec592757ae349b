package entity

import (
	"fmt"
	"strings"
)

// Kind identifies one of the three uploaded collections.
type Kind string

const (
	KindClient Kind = "clients"
	KindWorker Kind = "workers"
	KindTask   Kind = "tasks"
)

// Kinds lists all collection kinds in upload order.
var Kinds = []Kind{KindClient, KindWorker, KindTask}

// ParseKind parses a collection kind from its string form.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindClient:
		return KindClient, nil
	case KindWorker:
		return KindWorker, nil
	case KindTask:
		return KindTask, nil
	default:
		return "", fmt.Errorf("unknown entity kind %q", s)
	}
}

// RawRow is a single record as produced by the upstream CSV/spreadsheet
// reader: raw header string to scalar value. Headers may be arbitrarily
// cased, spaced or aliased.
type RawRow map[string]interface{}

// String returns the stringified value for a raw header, trimmed. Nil and
// missing values both come back as the empty string.
func (r RawRow) String(header string) string {
	v, ok := r[header]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// Spreadsheet readers hand integers back as float64.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// Client is a normalized client record.
type Client struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	PriorityLevel    int                    `json:"priorityLevel"`
	RequestedTaskIDs []string               `json:"requestedTaskIds"`
	GroupTag         string                 `json:"groupTag,omitempty"`
	Attributes       map[string]interface{} `json:"attributes"`
}

// Worker is a normalized worker record.
type Worker struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Skills             []string `json:"skills"`
	AvailableSlots     []int    `json:"availableSlots"`
	MaxLoadPerPhase    int      `json:"maxLoadPerPhase"`
	WorkerGroup        string   `json:"workerGroup,omitempty"`
	QualificationLevel int      `json:"qualificationLevel"`
	HourlyRate         float64  `json:"hourlyRate,omitempty"`
	WeeklyHours        float64  `json:"weeklyHours,omitempty"`
}

// Task is a normalized task record.
type Task struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category,omitempty"`
	Duration        int      `json:"duration"`
	RequiredSkills  []string `json:"requiredSkills"`
	PreferredPhases []int    `json:"preferredPhases"`
	MaxConcurrent   int      `json:"maxConcurrent"`
	Dependencies    []string `json:"dependencies,omitempty"`
	AssignedTo      string   `json:"assignedTo,omitempty"`
	ClientID        string   `json:"clientId,omitempty"`
	DueDate         string   `json:"dueDate,omitempty"`
	EstimatedHours  float64  `json:"estimatedHours,omitempty"`
	ActualHours     float64  `json:"actualHours,omitempty"`
}
