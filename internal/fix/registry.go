package fix

import (
	"sort"

	"textlintls/internal/diag"
	"textlintls/internal/textlint"
)

// AutoFix associates a fix command with the rule that proposed it and the
// document version it was computed against.
type AutoFix struct {
	Version int
	RuleID  string
	Fix     textlint.FixCommand
}

type entry struct {
	fix   AutoFix
	order int
}

// Registry stores the fixable findings of one document, keyed by the
// identity of the diagnostic they were published with. It is rebuilt on every
// validation pass: callers Clear it before registering a new run, so every
// entry shares the version of that run.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	entries map[string]entry
	seq     int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Key returns the identity of a diagnostic: its range and rule code.
func Key(d diag.Diagnostic) string {
	return d.Range.String() + "-" + d.Code
}

// Register stores the fix of msg under d's identity. Findings without a fix
// or rule id are ignored. A later registration with the same key replaces the
// earlier one.
func (r *Registry) Register(version int, d diag.Diagnostic, msg textlint.Message) {
	if !msg.Fixable() {
		return
	}
	key := Key(d)
	e, ok := r.entries[key]
	if !ok {
		r.seq++
		e.order = r.seq
	}
	e.fix = AutoFix{
		Version: version,
		RuleID:  msg.RuleID,
		Fix:     *msg.Fix,
	}
	r.entries[key] = e
}

// Clear drops every entry.
func (r *Registry) Clear() {
	clear(r.entries)
	r.seq = 0
}

// IsEmpty reports whether no fix is registered.
func (r *Registry) IsEmpty() bool {
	return len(r.entries) == 0
}

// Len returns the number of registered fixes.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Find returns the fixes registered for diagnostics, in input order.
// Diagnostics without a fix are skipped.
func (r *Registry) Find(diagnostics []diag.Diagnostic) []AutoFix {
	var out []AutoFix
	for _, d := range diagnostics {
		if e, ok := r.entries[Key(d)]; ok {
			out = append(out, e.fix)
		}
	}
	return out
}

// Version returns the document version the fixes were computed against, or
// -1 when the registry is empty.
func (r *Registry) Version() int {
	for _, e := range r.entries {
		return e.fix.Version
	}
	return -1
}

// SortedValues returns every fix ordered by range start, then range end.
// Equal ranges keep the order in which their keys were first registered.
func (r *Registry) SortedValues() []AutoFix {
	list := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool {
		li, lj := list[i].fix.Fix, list[j].fix.Fix
		if li.Start() != lj.Start() {
			return li.Start() < lj.Start()
		}
		if li.End() != lj.End() {
			return li.End() < lj.End()
		}
		return list[i].order < list[j].order
	})
	out := make([]AutoFix, len(list))
	for i, e := range list {
		out[i] = e.fix
	}
	return out
}

// Overlaps reports whether next starts before last ends.
func Overlaps(last, next AutoFix) bool {
	return last.Fix.End() > next.Fix.Start()
}

// SeparatedValues returns a non-overlapping subset of SortedValues that pass
// every filter. Selection is greedy: the first fix is kept, and each later fix
// is kept only if it does not overlap the most recently kept one.
func (r *Registry) SeparatedValues(filters ...func(AutoFix) bool) []AutoFix {
	var out []AutoFix
	for _, af := range r.SortedValues() {
		if !accept(af, filters) {
			continue
		}
		if len(out) > 0 && Overlaps(out[len(out)-1], af) {
			continue
		}
		out = append(out, af)
	}
	return out
}

func accept(af AutoFix, filters []func(AutoFix) bool) bool {
	for _, f := range filters {
		if f != nil && !f(af) {
			return false
		}
	}
	return true
}

// SameRule matches fixes proposed by rule.
func SameRule(rule string) func(AutoFix) bool {
	return func(af AutoFix) bool {
		return af.RuleID == rule
	}
}
