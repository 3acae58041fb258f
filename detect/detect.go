// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package detect locates the transcript of the currently active session.
//
// Strategies run in priority order, short-circuiting on the first hit:
// explicit session id, parent-process fd tracing, working-directory
// project mtime, then global mtime. When every strategy fails, the
// error concatenates each strategy's reason.
package detect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"syscall"
	"time"
)

// ErrNoActiveSession is returned when no strategy resolves a transcript.
var ErrNoActiveSession = errors.New("no active session detected")

const (
	// A transcript untouched for longer than this is not "active".
	stalenessWindow = 30 * time.Second

	// Two fresh transcripts closer together than this are ambiguous.
	ambiguityMargin = 2 * time.Second

	lsofTimeout = 5 * time.Second
)

var uuidRe = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

// Options configures detection.
type Options struct {
	// SessionsDir is the root containing per-project transcript dirs.
	SessionsDir string

	// TasksDir anchors fd-based tracing: a parent process holding a
	// file under this directory names the session in its path.
	TasksDir string

	// SessionID, when set, bypasses the heuristics entirely.
	SessionID string
}

// Active returns the path of the active session transcript.
func Active(opts Options) (string, error) {
	if opts.SessionID != "" {
		path, reason := byExplicitID(opts)
		if path != "" {
			return path, nil
		}
		return "", fmt.Errorf("%w: explicit_id: %s", ErrNoActiveSession, reason)
	}

	strategies := []struct {
		name string
		fn   func(Options) (string, string)
	}{
		{"pid_tracing", byPIDTracing},
		{"cwd_mtime", byCWDMtime},
		{"global_mtime", byGlobalMtime},
	}

	var reasons []string
	for _, s := range strategies {
		path, reason := s.fn(opts)
		if path != "" {
			return path, nil
		}
		if reason != "" {
			reasons = append(reasons, s.name+": "+reason)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoActiveSession, strings.Join(reasons, "; "))
}

func byExplicitID(opts Options) (path, reason string) {
	if !uuidRe.MatchString(opts.SessionID) || len(opts.SessionID) != 36 {
		return "", fmt.Sprintf("invalid session id format: %s", opts.SessionID)
	}

	for _, dir := range projectDirs(opts.SessionsDir) {
		candidate := filepath.Join(dir, opts.SessionID+".jsonl")
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, ""
		}
	}
	return "", fmt.Sprintf("session %s not found in %s", opts.SessionID, opts.SessionsDir)
}

// byPIDTracing inspects the parent process's open files for a task file
// whose path names a session UUID.
func byPIDTracing(opts Options) (path, reason string) {
	ppid := os.Getppid()
	if ppid <= 1 {
		return "", "parent is init, cannot trace"
	}

	ctx, cancel := context.WithTimeout(context.Background(), lsofTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "lsof", "-Fn", "-p", fmt.Sprint(ppid)).Output()
	if err != nil {
		return "", "lsof failed or is unavailable"
	}

	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "n") {
			continue
		}
		openPath := line[1:]
		if opts.TasksDir == "" || !strings.Contains(openPath, opts.TasksDir) {
			continue
		}

		id := uuidRe.FindString(openPath)
		if id == "" {
			continue
		}
		if found, _ := byExplicitID(Options{SessionsDir: opts.SessionsDir, SessionID: id}); found != "" {
			return found, ""
		}
		return "", fmt.Sprintf("session %s traced via parent fds but no transcript exists", id)
	}
	return "", "no task file descriptor found in parent process"
}

// byCWDMtime maps the working directory onto its escaped project dir
// and picks the freshest transcript inside it.
func byCWDMtime(opts Options) (path, reason string) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "could not resolve working directory"
	}

	encoded := strings.ReplaceAll(cwd, string(os.PathSeparator), "-")
	projectDir := filepath.Join(opts.SessionsDir, encoded)
	if fi, err := os.Lstat(projectDir); err != nil || !fi.IsDir() {
		return "", "no project dir matches the working directory"
	}

	return freshestJSONL(findJSONLs(projectDir))
}

func byGlobalMtime(opts Options) (path, reason string) {
	var all []string
	for _, dir := range projectDirs(opts.SessionsDir) {
		all = append(all, findJSONLs(dir)...)
	}
	return freshestJSONL(all)
}

// projectDirs lists non-symlink subdirectories of the sessions root.
func projectDirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && e.Type()&os.ModeSymlink == 0 {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs
}

// findJSONLs lists transcript files in one project dir, de-duplicated
// by inode in case of hard links.
func findJSONLs(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil
	}

	seen := make(map[uint64]struct{})
	var out []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if st, ok := info.Sys().(*syscall.Stat_t); ok {
			if _, dup := seen[st.Ino]; dup {
				continue
			}
			seen[st.Ino] = struct{}{}
		}
		out = append(out, m)
	}
	return out
}

// freshestJSONL picks the most recently modified transcript within the
// staleness window, refusing when the top two are too close to call.
func freshestJSONL(paths []string) (string, string) {
	if len(paths) == 0 {
		return "", "no transcript files found"
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	now := time.Now()
	var fresh []candidate
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= stalenessWindow {
			fresh = append(fresh, candidate{p, info.ModTime()})
		}
	}

	if len(fresh) == 0 {
		return "", fmt.Sprintf("no transcript modified within %s", stalenessWindow)
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].mod.After(fresh[j].mod) })

	if len(fresh) > 1 && fresh[0].mod.Sub(fresh[1].mod) <= ambiguityMargin {
		return "", fmt.Sprintf("ambiguous: %d transcripts modified within %s", len(fresh), stalenessWindow)
	}
	return fresh[0].path, ""
}
