package ingestion

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Open returns a reader over the file at path, decompressing .gz files
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip header %s: %w", path, err)
		}
		return &multiCloser{Reader: gr, closers: []io.Closer{gr, f}}, nil
	}
	return f, nil
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if e := c.Close(); err == nil && e != nil {
			err = e
		}
	}
	return err
}

// ForEachLine calls fn for every line of the file without its line ending.
// Invalid UTF-8 is replaced rather than failing the read, and lines have no
// length limit. The file is closed on every return path.
func ForEachLine(path string, fn func(line string)) (err error) {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	r := bufio.NewReaderSize(rc, 64*1024)
	for {
		line, readErr := r.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			fn(strings.ToValidUTF8(line, "\uFFFD"))
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("read %s: %w", path, readErr)
		}
	}
}
