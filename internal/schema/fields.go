package schema

import (
	"strings"
	"unicode"

	"github.com/skedplan/intake/internal/entity"
)

// Canonical field names shared by the header normalizer, the coercer and the
// validators. These are the names downstream consumers see.
const (
	FieldID                 = "id"
	FieldName               = "name"
	FieldPriorityLevel      = "priorityLevel"
	FieldRequestedTaskIDs   = "requestedTaskIds"
	FieldGroupTag           = "groupTag"
	FieldAttributes         = "attributes"
	FieldSkills             = "skills"
	FieldAvailableSlots     = "availableSlots"
	FieldMaxLoadPerPhase    = "maxLoadPerPhase"
	FieldWorkerGroup        = "workerGroup"
	FieldQualificationLevel = "qualificationLevel"
	FieldHourlyRate         = "hourlyRate"
	FieldWeeklyHours        = "weeklyHours"
	FieldCategory           = "category"
	FieldDuration           = "duration"
	FieldRequiredSkills     = "requiredSkills"
	FieldPreferredPhases    = "preferredPhases"
	FieldMaxConcurrent      = "maxConcurrent"
	FieldDependencies       = "dependencies"
	FieldAssignedTo         = "assignedTo"
	FieldClientID           = "clientId"
	FieldDueDate            = "dueDate"
	FieldEstimatedHours     = "estimatedHours"
	FieldActualHours        = "actualHours"
)

// FieldSpec describes one canonical field of an entity kind: its name and
// the raw header aliases that resolve to it. The alias list is the single
// place legacy column names are recognised; first non-empty raw value wins
// at coercion time.
type FieldSpec struct {
	Name    string
	Aliases []string
}

var clientFields = []FieldSpec{
	{FieldID, []string{"ClientID", "client_id", "clientid", "identifier"}},
	{FieldName, []string{"ClientName", "client_name", "clientname", "title"}},
	{FieldPriorityLevel, []string{"PriorityLevel", "priority_level", "priority"}},
	{FieldRequestedTaskIDs, []string{"RequestedTaskIDs", "requested_task_ids", "requested_tasks", "taskids", "tasks"}},
	{FieldGroupTag, []string{"GroupTag", "group_tag", "group"}},
	{FieldAttributes, []string{"AttributesJSON", "attributes_json", "attributesjson", "metadata", "preferences"}},
}

var workerFields = []FieldSpec{
	{FieldID, []string{"WorkerID", "worker_id", "workerid", "identifier"}},
	{FieldName, []string{"WorkerName", "worker_name", "workername"}},
	{FieldSkills, []string{"Skills", "skill_set", "skillset", "capabilities"}},
	{FieldAvailableSlots, []string{"AvailableSlots", "available_slots", "availableslots", "slots", "phases"}},
	{FieldMaxLoadPerPhase, []string{"MaxLoadPerPhase", "max_load_per_phase", "maxload", "max_load"}},
	{FieldWorkerGroup, []string{"WorkerGroup", "worker_group", "group"}},
	{FieldQualificationLevel, []string{"QualificationLevel", "qualification_level", "qualification", "level"}},
	{FieldHourlyRate, []string{"HourlyRate", "hourly_rate", "hourlyrate", "rate"}},
	{FieldWeeklyHours, []string{"WeeklyHours", "weekly_hours", "weeklyhours", "hours_per_week"}},
}

var taskFields = []FieldSpec{
	{FieldID, []string{"TaskID", "task_id", "taskid", "identifier"}},
	{FieldName, []string{"TaskName", "task_name", "taskname", "title"}},
	{FieldCategory, []string{"Category", "task_category", "type"}},
	{FieldDuration, []string{"Duration", "phases_required", "length"}},
	{FieldRequiredSkills, []string{"RequiredSkills", "required_skills", "requiredskills", "skills_needed"}},
	{FieldPreferredPhases, []string{"PreferredPhases", "preferred_phases", "preferredphases", "phases"}},
	{FieldMaxConcurrent, []string{"MaxConcurrent", "max_concurrent", "maxconcurrent", "parallelism"}},
	{FieldDependencies, []string{"Dependencies", "depends_on", "dependson", "prerequisites"}},
	{FieldAssignedTo, []string{"AssignedTo", "assigned_to", "assignedto", "worker"}},
	{FieldClientID, []string{"ClientID", "client_id", "clientid", "client"}},
	{FieldDueDate, []string{"DueDate", "due_date", "duedate", "deadline"}},
	{FieldEstimatedHours, []string{"EstimatedHours", "estimated_hours", "estimate"}},
	{FieldActualHours, []string{"ActualHours", "actual_hours", "actuals"}},
}

// Fields returns the canonical field specs for an entity kind.
func Fields(kind entity.Kind) []FieldSpec {
	switch kind {
	case entity.KindClient:
		return clientFields
	case entity.KindWorker:
		return workerFields
	case entity.KindTask:
		return taskFields
	default:
		return nil
	}
}

// RequiredColumns returns the canonical fields an upload of the given kind
// must carry for structural validation to pass.
func RequiredColumns(kind entity.Kind) []string {
	switch kind {
	case entity.KindClient:
		return []string{FieldID, FieldName, FieldPriorityLevel}
	case entity.KindWorker:
		return []string{FieldID, FieldName, FieldSkills, FieldAvailableSlots}
	case entity.KindTask:
		return []string{FieldID, FieldName, FieldDuration, FieldRequiredSkills}
	default:
		return nil
	}
}

// normalizeHeader strips whitespace and punctuation and lowercases, so that
// "Client_ID", "client id" and "ClientID" all compare equal.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// RawValue resolves a canonical field against a raw row via the alias table:
// the canonical name itself is consulted first, then each alias, first
// non-empty value wins. The matched header is returned alongside so errors
// can reference the original column.
func RawValue(row entity.RawRow, kind entity.Kind, field string) (value string, header string, ok bool) {
	var spec *FieldSpec
	fields := Fields(kind)
	for i := range fields {
		if fields[i].Name == field {
			spec = &fields[i]
			break
		}
	}
	if spec == nil {
		return "", "", false
	}

	candidates := append([]string{spec.Name}, spec.Aliases...)
	for _, cand := range candidates {
		want := normalizeHeader(cand)
		for h := range row {
			if normalizeHeader(h) == want {
				if v := row.String(h); v != "" {
					return v, h, true
				}
				// Remember the matched header even when empty so callers can
				// distinguish "column absent" from "value blank".
				if header == "" {
					header = h
				}
			}
		}
	}
	return "", header, header != ""
}
