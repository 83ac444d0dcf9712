package oglob

import (
	"path/filepath"
	"strings"
)

// entry is the per-walk compute cache. A single instance is reused across an
// entire Search call: reset repositions it on the next visited object and the
// derived forms below are computed at most once per object, only when a
// pattern asks for them.
type entry struct {
	absRoot string // resolved search root, fixed for the whole walk
	path    string // object path as visited, native separators
	rel     string // position below the search root, "" for the root itself

	abs     string
	full    string
	secs    []string
	relSecs []string
}

func (e *entry) reset(path, rel string) {
	e.path = path
	e.rel = rel
	e.abs = ""
	e.full = ""
	e.secs = nil
	e.relSecs = nil
}

func (e *entry) name() string {
	return filepath.Base(e.path)
}

func (e *entry) absolute() string {
	if e.abs == "" {
		if e.rel == "" {
			e.abs = e.absRoot
		} else {
			e.abs = filepath.Join(e.absRoot, e.rel)
		}
	}
	return e.abs
}

func (e *entry) fullPath() string {
	if e.full == "" {
		e.full = filepath.ToSlash(e.absolute())
	}
	return e.full
}

func (e *entry) sections() []string {
	if e.secs == nil {
		e.secs = splitSections(e.fullPath())
	}
	return e.secs
}

func (e *entry) relSections() []string {
	if e.relSecs == nil {
		e.relSecs = splitSections(filepath.ToSlash(e.rel))
	}
	return e.relSecs
}

// splitSections returns the non-empty slash-separated segments of path.
// It never returns nil so a computed empty result is distinguishable from
// a not-yet-computed cache slot.
func splitSections(path string) []string {
	sections := make([]string, 0, strings.Count(path, "/")+1)
	for _, section := range strings.Split(path, "/") {
		if section != "" {
			sections = append(sections, section)
		}
	}
	return sections
}
