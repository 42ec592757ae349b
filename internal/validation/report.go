package validation

// ValidationError is one validation finding. Row 0 marks a file-level error;
// rows are otherwise 1-based positions in the uploaded data, independent of
// whether the row survived coercion.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Summary holds the row counts for a validated collection. InvalidRows counts
// distinct row numbers carrying errors, not total error count.
type Summary struct {
	TotalRows   int `json:"totalRows"`
	ValidRows   int `json:"validRows"`
	InvalidRows int `json:"invalidRows"`
}

// Result is the consolidated report for one uploaded collection. Data keeps
// every row, coerced where possible, so the caller can surface and repair
// broken rows; ValidData keeps only rows with zero errors.
type Result[T any] struct {
	IsValid   bool              `json:"isValid"`
	Errors    []ValidationError `json:"errors"`
	Data      []T               `json:"data"`
	ValidData []T               `json:"validData"`
	Summary   Summary           `json:"summary"`
}

// BuildResult assembles a report from all coerced rows and the combined error
// stream. Row i of data corresponds to row number i+1 in the errors.
func BuildResult[T any](data []T, errs []ValidationError) Result[T] {
	invalid := invalidRowSet(errs)

	validData := make([]T, 0, len(data))
	for i, row := range data {
		if _, bad := invalid[i+1]; !bad {
			validData = append(validData, row)
		}
	}

	return Result[T]{
		IsValid:   len(errs) == 0,
		Errors:    errs,
		Data:      data,
		ValidData: validData,
		Summary: Summary{
			TotalRows:   len(data),
			ValidRows:   len(data) - len(invalid),
			InvalidRows: len(invalid),
		},
	}
}

// Merge appends later error batches (cross-reference, capacity) onto a prior
// result and returns a new one; the input is never mutated, so callers decide
// what to persist and a re-run cannot double-merge. ValidData is deliberately
// left as computed by the earlier passes: rows that only fail cross-collection
// checks stay in it.
func Merge[T any](prior Result[T], batches ...[]ValidationError) Result[T] {
	errs := make([]ValidationError, len(prior.Errors))
	copy(errs, prior.Errors)
	for _, batch := range batches {
		errs = append(errs, batch...)
	}

	invalid := invalidRowSet(errs)

	out := prior
	out.Errors = errs
	out.IsValid = len(errs) == 0
	out.Summary.InvalidRows = len(invalid)
	out.Summary.ValidRows = out.Summary.TotalRows - len(invalid)
	return out
}

func invalidRowSet(errs []ValidationError) map[int]struct{} {
	rows := make(map[int]struct{})
	for _, e := range errs {
		if e.Row > 0 {
			rows[e.Row] = struct{}{}
		}
	}
	return rows
}
