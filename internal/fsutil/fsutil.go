// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fsutil provides file and directory helpers.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrSameDir is returned when a tree would be copied onto itself.
var ErrSameDir = errors.New("source and destination are the same directory")

// CopyTree copies the contents of src into dst, creating dst as needed.
// Existing files are overwritten and file permissions are kept. When dst
// lies inside src, the dst subtree is not copied into itself.
func CopyTree(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	if absSrc == absDst {
		return ErrSameDir
	}
	if err := os.MkdirAll(absDst, 0o755); err != nil {
		return err
	}

	return filepath.WalkDir(absSrc, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == absDst {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(absSrc, path)
		if err != nil {
			return err
		}
		target := filepath.Join(absDst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsURL returns true if the string carries a URL scheme or is a mail link.
func IsURL(s string) bool {
	return strings.Contains(s, "://") || strings.HasPrefix(s, "mailto:")
}
