package scoring

import (
	"strconv"
	"strings"

	"github.com/okian/taskrank/internal/domain/model"
	"github.com/okian/taskrank/internal/domain/types"
)

// explain renders the clauses in fixed order. Defaulting notes depend on
// whether the field was sent, not on its value.
func explain(t model.Task, urgencyMsg string, c types.Components, unblocks bool) string {
	var b strings.Builder
	b.WriteString(urgencyMsg)
	b.WriteString("; importance normalized ")
	b.WriteString(formatFloat(c.Importance))
	b.WriteString("; effort contribution ")
	b.WriteString(formatFloat(c.Effort))
	if unblocks {
		b.WriteString("; unblocks others (+")
		b.WriteString(formatFloat(c.Dependency))
		b.WriteString(")")
	}
	if !t.HasImportance() {
		b.WriteString("; importance defaulted to 5")
	}
	if !t.HasEstimatedHours() {
		b.WriteString("; estimated_hours defaulted to 1")
	}
	return b.String()
}

// formatFloat prints the shortest decimal form and always keeps a fraction,
// so 1 reads "1.0" and 0.3333 reads "0.3333".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
