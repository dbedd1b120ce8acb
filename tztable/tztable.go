// Package tztable builds a validated, queryable table of time zones, rule
// sets, and links out of one or more parsed tzdata source files.
//
// A Builder plays the same role as zic's in-memory zone table: it groups the
// zone continuation lines of each named zone in file order, collects rule
// lines by rule set name, and resolves link chains to the zone they name,
// rejecting input that a materializer downstream could not make sense of.
package tztable

import (
	"errors"
	"fmt"

	"github.com/zonemap/tzdb/tzdata"
)

// Zone is a named time zone as defined by one or more ordered eras.
// Infos[i].Until, when defined, is the instant at which era i+1 begins;
// the final era's Until is undefined, meaning the era applies forever.
type Zone struct {
	Name  string
	Infos []tzdata.ZoneLine
}

// Table is a validated set of zones, rule sets, and link aliases.
type Table struct {
	Zones map[string]Zone
	Rules map[string][]tzdata.RuleLine
	Links map[string]string // alias name -> canonical zone name
}

// Zone looks up a zone by name, resolving a link alias first if necessary.
func (t Table) Zone(name string) (Zone, bool) {
	if canonical, ok := t.Links[name]; ok {
		name = canonical
	}
	z, ok := t.Zones[name]
	return z, ok
}

// Canonical resolves name, which may be a zone name or a link alias, to the
// name of the zone that defines it.
func (t Table) Canonical(name string) (string, bool) {
	if canonical, ok := t.Links[name]; ok {
		return canonical, true
	}
	if _, ok := t.Zones[name]; ok {
		return name, true
	}
	return "", false
}

// ErrorKind classifies a BuildError.
type ErrorKind int

const (
	DuplicateZone ErrorKind = iota
	DuplicateRule
	UndefinedRuleset
	OrphanContinuation
	LinkOverZone
	CyclicLink
	MissingTerminator
)

func (k ErrorKind) String() string {
	switch k {
	case DuplicateZone:
		return "DuplicateZone"
	case DuplicateRule:
		return "DuplicateRule"
	case UndefinedRuleset:
		return "UndefinedRuleset"
	case OrphanContinuation:
		return "OrphanContinuation"
	case LinkOverZone:
		return "LinkOverZone"
	case CyclicLink:
		return "CyclicLink"
	case MissingTerminator:
		return "MissingTerminator"
	default:
		return "<UNDEFINED>"
	}
}

// BuildError is an error that occurred while folding source lines into a
// Table, implementing the error interface.
type BuildError struct {
	Kind ErrorKind
	Name string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Name, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Option configures a Builder.
type Option func(*Builder)

// WithFilter restricts Build to zones (and the link aliases that resolve to
// them) whose name satisfies pred. Rule sets are always retained regardless
// of which zones pass the filter, since a zone excluded by pred may still
// reference the same rule set as a zone that is kept.
func WithFilter(pred func(name string) bool) Option {
	return func(b *Builder) { b.filter = pred }
}

// Builder accumulates zone, rule, and link lines from one or more tzdata
// source files and validates them into a Table.
//
// The zero value is not usable; construct one with NewBuilder.
type Builder struct {
	filter func(string) bool

	zoneOrder []string
	zones     map[string][]tzdata.ZoneLine
	rules     map[string][]tzdata.RuleLine
	links     []tzdata.LinkLine

	openZone string
}

// NewBuilder returns a Builder ready to accept source files via AddFile.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		zones: make(map[string][]tzdata.ZoneLine),
		rules: make(map[string][]tzdata.RuleLine),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddFile folds the zone, rule, and link lines of a parsed tzdata source file
// into the builder. Zone continuation lines are attached to the most
// recently started zone header within this call; a file that opens with a
// continuation line, rather than a zone header, is rejected, since
// continuations cannot span two separate calls to AddFile.
func (b *Builder) AddFile(f tzdata.File) error {
	b.openZone = ""
	for _, zl := range f.ZoneLines {
		if zl.Continuation {
			if b.openZone == "" {
				return &BuildError{Kind: OrphanContinuation, Err: errors.New("continuation line has no preceding zone header in this file")}
			}
		} else {
			b.openZone = zl.Name
			if _, exists := b.zones[b.openZone]; exists {
				return &BuildError{Kind: DuplicateZone, Name: b.openZone, Err: errors.New("zone already defined")}
			}
			b.zoneOrder = append(b.zoneOrder, b.openZone)
		}
		b.zones[b.openZone] = append(b.zones[b.openZone], zl)
	}

	for _, rl := range f.RuleLines {
		for _, existing := range b.rules[rl.Name] {
			if existing == rl {
				return &BuildError{Kind: DuplicateRule, Name: rl.Name, Err: fmt.Errorf("identical rule already defined for FROM %s", rl.From)}
			}
		}
		b.rules[rl.Name] = append(b.rules[rl.Name], rl)
	}

	b.links = append(b.links, f.LinkLines...)

	return nil
}

// Build validates the accumulated lines and returns the resulting Table.
func (b *Builder) Build() (Table, error) {
	t := Table{
		Zones: make(map[string]Zone),
		Rules: b.rules,
		Links: make(map[string]string),
	}

	for _, name := range b.zoneOrder {
		infos := b.zones[name]
		for i, era := range infos {
			if era.Rules.Form == tzdata.ZoneRulesName {
				if _, ok := b.rules[era.Rules.Name]; !ok {
					return Table{}, &BuildError{Kind: UndefinedRuleset, Name: era.Rules.Name, Err: fmt.Errorf("zone %q era %d references undefined rule set", name, i)}
				}
			}
			if !era.Until.Defined && i != len(infos)-1 {
				return Table{}, &BuildError{Kind: MissingTerminator, Name: name, Err: fmt.Errorf("era %d has no UNTIL but is followed by further eras", i)}
			}
			if era.Until.Defined && i == len(infos)-1 {
				return Table{}, &BuildError{Kind: MissingTerminator, Name: name, Err: fmt.Errorf("final era %d has an UNTIL but no era follows it", i)}
			}
		}
		if b.filter != nil && !b.filter(name) {
			continue
		}
		t.Zones[name] = Zone{Name: name, Infos: infos}
	}

	linkTo := make(map[string]string, len(b.links))
	for _, l := range b.links {
		linkTo[l.To] = l.From
	}
	for alias := range linkTo {
		target, err := resolveLink(alias, linkTo, b.zones)
		if err != nil {
			return Table{}, err
		}
		if _, isZone := b.zones[alias]; isZone {
			return Table{}, &BuildError{Kind: LinkOverZone, Name: alias, Err: fmt.Errorf("link alias collides with a zone of the same name")}
		}
		if b.filter != nil && !b.filter(alias) {
			continue
		}
		if _, ok := t.Zones[target]; !ok {
			// Target was itself dropped by the filter; an alias to a zone
			// absent from the table would be dangling.
			continue
		}
		t.Links[alias] = target
	}

	return t, nil
}

// resolveLink follows a chain of link-to-link aliases until it reaches a
// name defined by a zone header, returning that zone's name.
func resolveLink(alias string, linkTo map[string]string, zones map[string][]tzdata.ZoneLine) (string, error) {
	seen := map[string]bool{alias: true}
	cur := alias
	for {
		if _, ok := zones[cur]; ok {
			return cur, nil
		}
		next, ok := linkTo[cur]
		if !ok {
			return "", &BuildError{Kind: CyclicLink, Name: alias, Err: fmt.Errorf("link chain does not terminate in a zone, stuck at %q", cur)}
		}
		if seen[next] {
			return "", &BuildError{Kind: CyclicLink, Name: alias, Err: fmt.Errorf("cyclic link chain")}
		}
		seen[next] = true
		cur = next
	}
}
