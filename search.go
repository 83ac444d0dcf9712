package oglob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// Search lazily walks root and yields the resolved absolute path of every
// object matching pattern. The walk is depth-first, lexical order within
// each directory. Work advances only as far as the consumer pulls values:
// stopping early stops the walk, and the returned sequence is single-pass.
//
// The root may name a file, in which case it is the only candidate. A
// leading "~" in root is expanded to the user home directory.
//
// Directory listing failures and context cancellation are yielded as the
// error half of the sequence and terminate it; see OnError for the
// skip-and-continue alternative. A panic raised by a pattern callback
// propagates to the consumer unchanged.
func Search(ctx context.Context, root string, pattern Pattern, opts ...Option) iter.Seq2[string, error] {
	cfg := newConfig(opts)

	return func(yield func(string, error) bool) {
		path, err := expandRoot(root)
		if err != nil {
			yield("", err)
			return
		}

		info, err := os.Lstat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && cfg.missingOK {
				return
			}
			yield("", fmt.Errorf("search root %q: %w", root, err))
			return
		}

		absRoot, err := filepath.Abs(path)
		if err != nil {
			yield("", fmt.Errorf("resolve search root %q: %w", root, err))
			return
		}

		w := &walker{
			cfg:     cfg,
			pattern: pattern,
			yield:   yield,
		}
		w.entry.absRoot = absRoot
		w.walkRoot(ctx, path, info)
	}
}

// walker carries the state of one Search call. Its walk methods report
// whether traversal should continue; false means the consumer stopped
// pulling or an error terminated the sequence.
type walker struct {
	cfg     config
	pattern Pattern
	entry   entry
	yield   func(string, error) bool
}

func (w *walker) walkRoot(ctx context.Context, root string, info fs.FileInfo) {
	isLink := info.Mode()&fs.ModeSymlink != 0
	if isLink && !w.cfg.followSymlinks {
		return
	}

	isDir := info.IsDir()
	if isLink {
		// A broken symlink root resolves to nothing walkable and stays a
		// file candidate.
		if target, err := os.Stat(root); err == nil {
			isDir = target.IsDir()
		}
	}

	if !isDir {
		w.emit(root, "")
		return
	}

	if w.cfg.includeDir && !w.emit(root, "") {
		return
	}
	w.walkDir(ctx, root, "")
}

func (w *walker) walkDir(ctx context.Context, dir, rel string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if w.cfg.onError != nil && w.cfg.onError(dir, err) {
			return true
		}
		w.yield("", fmt.Errorf("list %q: %w", dir, err))
		return false
	}

	for _, de := range entries {
		if err := ctx.Err(); err != nil {
			w.yield("", err)
			return false
		}

		path := filepath.Join(dir, de.Name())
		childRel := filepath.Join(rel, de.Name())

		isLink := de.Type()&fs.ModeSymlink != 0
		if isLink && !w.cfg.followSymlinks {
			continue
		}

		isDir := de.IsDir()
		if isLink {
			if target, err := os.Stat(path); err == nil {
				isDir = target.IsDir()
			}
		}

		if isDir {
			if w.cfg.includeDir && !w.emit(path, childRel) {
				return false
			}
			// Descent does not depend on whether the directory matched.
			if w.cfg.recursive && !w.walkDir(ctx, path, childRel) {
				return false
			}
			continue
		}

		if !w.emit(path, childRel) {
			return false
		}
	}

	return true
}

// emit evaluates the pattern against one visited object and yields its
// resolved path on a match. It reports whether the walk should continue.
func (w *walker) emit(path, rel string) bool {
	w.entry.reset(path, rel)
	if !w.pattern.match(&w.entry) {
		return true
	}
	return w.yield(w.entry.absolute(), nil)
}

func expandRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "~" || strings.HasPrefix(root, "~/") || strings.HasPrefix(root, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %q: %w", root, err)
		}
		root = filepath.Join(home, root[1:])
	}
	return filepath.Clean(root), nil
}
