package xlgrid

import "fmt"

// Severity indicates the severity of a verification issue.
type Severity int

const (
	SeverityError   Severity = iota // internal state is inconsistent
	SeverityWarning                 // state is legal but probably unintended
)

// Issue is a single problem found by Verify.
type Issue struct {
	Severity Severity
	Ref      CellRef
	Message  string
}

// String formats the issue as "[ERROR] B2: message" or "[WARN] ...".
func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, i.Ref, i.Message)
}

// Verify checks the sheet's internal invariants and returns every issue
// found. A healthy sheet returns none. It never mutates.
func (s *Sheet) Verify() []Issue {
	var issues []Issue
	issues = append(issues, s.verifyStorage()...)
	issues = append(issues, s.verifyMerges()...)
	issues = append(issues, s.verifyFilter()...)
	return issues
}

func (s *Sheet) verifyStorage() []Issue {
	var issues []Issue
	var want Range
	has := false
	for ref, c := range s.cells {
		if c.ref != ref {
			issues = append(issues, Issue{SeverityError, ref,
				fmt.Sprintf("cell stored at %s reports coordinate %s", ref, c.ref)})
		}
		if !ref.valid() {
			issues = append(issues, Issue{SeverityError, ref, ref.invalidReason()})
		}
		if !has {
			want, has = CellRange(ref), true
		} else {
			want = want.Union(CellRange(ref))
		}
	}
	if has != s.hasBounds || (has && want != s.bounds) {
		issues = append(issues, Issue{SeverityError, want.Start,
			fmt.Sprintf("dimensions %s do not match stored cells %s", s.describeBounds(), want)})
	}
	return issues
}

func (s *Sheet) describeBounds() string {
	if !s.hasBounds {
		return "none"
	}
	return s.bounds.String()
}

func (s *Sheet) verifyMerges() []Issue {
	var issues []Issue
	for i, m := range s.merges {
		if err := m.Validate(); err != nil {
			issues = append(issues, Issue{SeverityError, m.Start, err.Error()})
			continue
		}
		for _, o := range s.merges[i+1:] {
			if m.Overlaps(o) {
				issues = append(issues, Issue{SeverityError, m.Start,
					fmt.Sprintf("merge %s overlaps merge %s", m, o)})
			}
		}
		if m.Start == m.End {
			issues = append(issues, Issue{SeverityWarning, m.Start, "single-cell merge"})
		}
	}
	for ref, c := range s.cells {
		want := MergeRole{}
		if m, ok := s.mergeContaining(ref); ok {
			want = roleFor(m, ref)
		}
		if c.merge != want {
			issues = append(issues, Issue{SeverityError, ref,
				fmt.Sprintf("merge role %s does not match registry (%s)", c.merge.Kind, want.Kind)})
		}
		if c.merge.Kind == MergeSlave && !c.value.IsEmpty() {
			issues = append(issues, Issue{SeverityWarning, ref,
				fmt.Sprintf("value hidden by merge with master %s", c.merge.Master)})
		}
	}
	return issues
}

func (s *Sheet) verifyFilter() []Issue {
	var issues []Issue
	for row := range s.filter.hidden {
		if !s.IsRowHidden(row) {
			issues = append(issues, Issue{SeverityError, CellRef{Row: row},
				fmt.Sprintf("row %d is filtered but not hidden", row+1)})
		}
	}
	if len(s.filter.columns) == 0 && len(s.filter.hidden) > 0 {
		issues = append(issues, Issue{SeverityError, CellRef{},
			"rows hidden by a filter with no criteria"})
	}
	return issues
}
