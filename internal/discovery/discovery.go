// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pterm/pterm"
)

// File name prefixes of nginx logs. Rotated and compressed variants
// (access.log.1, access.log.2.gz) share the prefix.
const (
	AccessPrefix = "access.log"
	ErrorPrefix  = "error.log"
)

// ListFiles returns the regular files in dir whose name starts with prefix,
// sorted by file name. A missing or unreadable directory yields an empty list.
func ListFiles(dir, prefix string, logger *pterm.Logger) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Log directory not found", logger.Args("dir", dir))
		} else {
			logger.WithCaller().Warn("Cannot read log directory", logger.Args("dir", dir, "error", err))
		}
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if !entry.Type().IsRegular() {
			logger.Trace("Skipping non-regular entry", logger.Args("name", entry.Name()))
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	files := make([]string, 0, len(names))
	for _, name := range names {
		files = append(files, filepath.Join(dir, name))
	}

	logger.Debug("Discovered log files", logger.Args("dir", dir, "prefix", prefix, "count", len(files)))
	return files
}

// Detector finds the input files of one log kind
type Detector interface {
	Name() string
	Detect() []string
}

// PrefixDetector detects files by name prefix in a single directory
type PrefixDetector struct {
	name   string
	dir    string
	prefix string
	logger *pterm.Logger
}

// NewAccessDetector detects access logs in dir
func NewAccessDetector(dir string, logger *pterm.Logger) *PrefixDetector {
	return &PrefixDetector{name: "access", dir: dir, prefix: AccessPrefix, logger: logger}
}

// NewErrorDetector detects error logs in dir
func NewErrorDetector(dir string, logger *pterm.Logger) *PrefixDetector {
	return &PrefixDetector{name: "error", dir: dir, prefix: ErrorPrefix, logger: logger}
}

func (d *PrefixDetector) Name() string {
	return d.name
}

func (d *PrefixDetector) Detect() []string {
	return ListFiles(d.dir, d.prefix, d.logger)
}
