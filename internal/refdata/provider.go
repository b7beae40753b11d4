package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Provider supplies a complete dataset. It is called once at start-up and again
// on every reload.
type Provider interface {
	Load(ctx context.Context) (*Dataset, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (*Dataset, error)

// Load calls f.
func (f ProviderFunc) Load(ctx context.Context) (*Dataset, error) { return f(ctx) }

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func rowValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// RowIssue describes a row that Sanitize dropped.
type RowIssue struct {
	Level  Level
	Line   int
	ID     string
	Reason string
}

func (i RowIssue) String() string {
	return fmt.Sprintf("%s row %d (id=%q): %s", i.Level, i.Line, i.ID, i.Reason)
}

// Sanitize validates rows and drops the ones that cannot be indexed: rows with
// no id or name, and repeated ids within a level (the first occurrence wins).
// Parent references are not checked here; dangling parents are tolerated and
// simply truncate the ancestor chain.
func Sanitize(level Level, rows []Row) ([]Row, []RowIssue) {
	v := rowValidator()
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0:0]
	var issues []RowIssue

	for i, r := range rows {
		if err := v.Struct(r); err != nil {
			issues = append(issues, RowIssue{Level: level, Line: i + 1, ID: r.ID, Reason: err.Error()})
			continue
		}
		if _, dup := seen[r.ID]; dup {
			issues = append(issues, RowIssue{Level: level, Line: i + 1, ID: r.ID, Reason: "duplicate id"})
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out, issues
}

// logIssues reports dropped rows at warn level, capped so a bad file cannot
// flood the log.
func logIssues(l *slog.Logger, source string, issues []RowIssue) {
	const maxLogged = 20
	for i, is := range issues {
		if i == maxLogged {
			l.Warn("refdata_rows_dropped_more", "source", source, "remaining", len(issues)-maxLogged)
			return
		}
		l.Warn("refdata_row_dropped", "source", source, "issue", is.String())
	}
}
