// Package dropgate decides whether files dragged onto the importer may be
// imported.
//
// A drop is rejected when the importer is already busy, when it comes from
// the asset browser, when any dropped path is or contains a ".crate"
// archive, or when any path lies inside the game's own asset root. Otherwise
// it is accepted if at least one path is a file with an extension or a
// non-empty directory.
package dropgate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CrateExtension is the packaged-asset archive suffix that is never imported.
const CrateExtension = ".crate"

// AssetBrowserMIME is the drag payload type set by the asset browser.
const AssetBrowserMIME = "application/x-asset-browser-entry"

// Reason explains a decision.
type Reason string

const (
	Accepted         Reason = "accepted"
	ImporterRunning  Reason = "importer-running"
	FromAssetBrowser Reason = "from-asset-browser"
	CrateFile        Reason = "crate-file"
	UnderGameRoot    Reason = "under-game-root"
	Empty            Reason = "empty"
)

// Request describes a single drag event.
type Request struct {
	// Paths are the dropped local paths.
	Paths []string `json:"paths"`
	// MIMETypes are the payload types offered by the drag source.
	MIMETypes []string `json:"mime_types,omitempty"`
	// ImporterRunning is true while a previous import is still in progress.
	ImporterRunning bool `json:"importer_running,omitempty"`
	// GameRoot is the project's asset root. Empty disables the check.
	GameRoot string `json:"game_root,omitempty"`
}

// Decision is the outcome of [Evaluate].
type Decision struct {
	Accept bool   `json:"accept"`
	Reason Reason `json:"reason"`
	// Path is the offending path for path-based rejections.
	Path string `json:"path,omitempty"`
}

// Evaluate applies the acceptance rules to req. It reads the file system
// but keeps no state between calls.
func Evaluate(req Request) Decision {
	if req.ImporterRunning {
		return reject(ImporterRunning, "")
	}
	for _, m := range req.MIMETypes {
		if m == AssetBrowserMIME {
			return reject(FromAssetBrowser, "")
		}
	}
	for _, p := range req.Paths {
		if containsCrate(p) {
			return reject(CrateFile, p)
		}
	}
	if req.GameRoot != "" {
		for _, p := range req.Paths {
			if underRoot(p, req.GameRoot) {
				return reject(UnderGameRoot, p)
			}
		}
	}
	for _, p := range req.Paths {
		if importable(p) {
			return Decision{Accept: true, Reason: Accepted}
		}
	}
	return reject(Empty, "")
}

// Files returns the dropped paths the importer should open, skipping any
// path that is or contains a crate archive.
func Files(paths []string) []string {
	var out []string
	for _, p := range paths {
		if !containsCrate(p) {
			out = append(out, p)
		}
	}
	return out
}

func reject(r Reason, path string) Decision {
	return Decision{Reason: r, Path: path}
}

func isCrate(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), CrateExtension)
}

// containsCrate reports whether path names a crate file or is a directory
// with a crate file anywhere below it.
func containsCrate(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return isCrate(path)
	}
	if !info.IsDir() {
		return isCrate(path)
	}
	found := false
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && isCrate(d.Name()) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

// underRoot compares case-insensitively, as asset paths are on Windows hosts.
func underRoot(path, root string) bool {
	p := strings.ToLower(filepath.ToSlash(filepath.Clean(path)))
	r := strings.ToLower(filepath.ToSlash(filepath.Clean(root)))
	return p == r || strings.HasPrefix(p, strings.TrimSuffix(r, "/")+"/")
}

// importable reports whether path is a file with an extension or a
// directory containing at least one file.
func importable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return filepath.Ext(path) != ""
	}
	found := false
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
