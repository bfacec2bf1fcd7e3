package transform

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// Registry maps (version, table) to transformers. It is built once at
// startup and is safe for concurrent readers afterwards.
type Registry struct {
	byTable map[string][]Transformer // ascending by version
}

func tableKey(table string) string { return strings.ToUpper(strings.TrimSpace(table)) }

func canonical(version string) string {
	v := strings.TrimSpace(version)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// ValidVersion reports whether version is a semantic version, with or
// without the leading "v".
func ValidVersion(version string) bool { return semver.IsValid(canonical(version)) }

// CompareVersions orders two versions as semver.Compare does.
func CompareVersions(a, b string) int { return semver.Compare(canonical(a), canonical(b)) }

func NewRegistry(ts ...Transformer) (*Registry, error) {
	r := &Registry{byTable: make(map[string][]Transformer)}
	for _, t := range ts {
		a := t.Advice()
		if a.Table == "" {
			return nil, fmt.Errorf("transform: %T has no table", t)
		}
		if !semver.IsValid(canonical(a.Version)) {
			return nil, fmt.Errorf("transform: %T: invalid version %q", t, a.Version)
		}
		key := tableKey(a.Table)
		for _, prev := range r.byTable[key] {
			if semver.Compare(canonical(prev.Advice().Version), canonical(a.Version)) == 0 {
				return nil, fmt.Errorf("transform: duplicate transformer for %s", a)
			}
		}
		r.byTable[key] = append(r.byTable[key], t)
	}
	for _, list := range r.byTable {
		slices.SortStableFunc(list, func(x, y Transformer) int {
			return semver.Compare(canonical(x.Advice().Version), canonical(y.Advice().Version))
		})
	}
	return r, nil
}

// TransformersFor returns every transformer registered for table, oldest
// version first. The result may be empty.
func (r *Registry) TransformersFor(table string) []Transformer {
	return slices.Clone(r.byTable[tableKey(table)])
}

// Select returns the transformer registered for exactly version.
func (r *Registry) Select(table, version string) (Transformer, bool) {
	want := canonical(version)
	for _, t := range r.byTable[tableKey(table)] {
		if semver.Compare(canonical(t.Advice().Version), want) == 0 {
			return t, true
		}
	}
	return nil, false
}

func (r *Registry) Lookup(table, version string) (Transformer, error) {
	if t, ok := r.Select(table, version); ok {
		return t, nil
	}
	return nil, &UnknownTableError{Table: table, Version: version}
}

// Chain returns the transformers needed to upgrade table from one version to
// another: every version v with from < v <= to, in ascending order.
func (r *Registry) Chain(table, from, to string) []Transformer {
	lo, hi := canonical(from), canonical(to)
	var out []Transformer
	for _, t := range r.byTable[tableKey(table)] {
		v := canonical(t.Advice().Version)
		if semver.Compare(v, lo) > 0 && semver.Compare(v, hi) <= 0 {
			out = append(out, t)
		}
	}
	return out
}

// Tables lists the tables with at least one transformer, sorted.
func (r *Registry) Tables() []string {
	out := make([]string, 0, len(r.byTable))
	for k := range r.byTable {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// HasVersion reports whether any table has a transformer at exactly version.
func (r *Registry) HasVersion(version string) bool {
	want := canonical(version)
	for _, list := range r.byTable {
		for _, t := range list {
			if semver.Compare(canonical(t.Advice().Version), want) == 0 {
				return true
			}
		}
	}
	return false
}

// Versions lists the distinct registered versions, oldest first, as they
// were advertised.
func (r *Registry) Versions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range r.byTable {
		for _, t := range list {
			v := t.Advice().Version
			if !seen[canonical(v)] {
				seen[canonical(v)] = true
				out = append(out, v)
			}
		}
	}
	slices.SortFunc(out, CompareVersions)
	return out
}
