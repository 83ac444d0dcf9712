// Package oglob finds files and directories by walking a directory tree and
// testing each visited object against a composable boolean pattern, similar
// to glob matching but with arbitrary predicates over path components.
package oglob

// Pattern is an immutable matcher over a visited filesystem object.
//
// Patterns are built from the Name, Full, Sec, SecRelative and Path
// constructors and composed with And, Or, Not and Diff. Composition always
// produces a new value and never mutates its operands, so a Pattern may be
// shared freely between concurrent Search calls.
//
// The zero Pattern, and any pattern constructed from a nil callback, panics
// on its first evaluation rather than at construction.
type Pattern struct {
	match func(e *entry) bool
}

// Name matches on the final name component of the visited object.
func Name(pred func(name string) bool) Pattern {
	return Pattern{match: func(e *entry) bool {
		return pred(e.name())
	}}
}

// Full matches on the absolute path of the visited object in slash form.
// Forward slashes are used as separators regardless of platform.
func Full(pred func(path string) bool) Pattern {
	return Pattern{match: func(e *entry) bool {
		return pred(e.fullPath())
	}}
}

// Sec matches on the segments of the absolute path, ordered root to leaf.
// The path root is not a segment of its own: /home/user/x yields
// ["home", "user", "x"].
func Sec(pred func(sections []string) bool) Pattern {
	return Pattern{match: func(e *entry) bool {
		return pred(e.sections())
	}}
}

// SecRelative matches on the path segments relative to the search root.
// The root itself has no segments.
func SecRelative(pred func(sections []string) bool) Pattern {
	return Pattern{match: func(e *entry) bool {
		return pred(e.relSections())
	}}
}

// Path matches on the path exactly as visited during the walk: the search
// root argument joined with the position below it, using native separators.
func Path(pred func(path string) bool) Pattern {
	return Pattern{match: func(e *entry) bool {
		return pred(e.path)
	}}
}

// And matches when both p and q match. q is not evaluated for objects
// rejected by p.
func (p Pattern) And(q Pattern) Pattern {
	return Pattern{match: func(e *entry) bool {
		return p.match(e) && q.match(e)
	}}
}

// Or matches when either p or q matches. q is not evaluated for objects
// accepted by p.
func (p Pattern) Or(q Pattern) Pattern {
	return Pattern{match: func(e *entry) bool {
		return p.match(e) || q.match(e)
	}}
}

// Not matches the objects p rejects.
func (p Pattern) Not() Pattern {
	return Pattern{match: func(e *entry) bool {
		return !p.match(e)
	}}
}

// Diff matches when p matches and q does not. It is equivalent to
// p.And(q.Not()) and short-circuits the same way.
func (p Pattern) Diff(q Pattern) Pattern {
	return p.And(q.Not())
}
