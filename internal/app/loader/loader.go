// Package loader fetches the served JSON document from a vfs-addressable
// location.
package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/c2fo/vfs/v7/vfssimple"

	"github.com/sjonq/sjonq-go/sjonq"
)

// Fetch reads the document at uri and returns its UTF-8 content. The uri
// may be any scheme the vfs backends support (file://, s3://, gs://, ...);
// a bare path is treated as a local file. A non-empty charset names the
// document's text encoding.
func Fetch(uri, charset string) ([]byte, error) {
	resolved, err := resolveURI(uri)
	if err != nil {
		return nil, err
	}
	f, err := vfssimple.NewFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", uri, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", uri, err)
	}
	return sjonq.DecodeCharset(content, charset)
}

func resolveURI(uri string) (string, error) {
	if strings.Contains(uri, "://") {
		return uri, nil
	}
	abs, err := filepath.Abs(uri)
	if err != nil {
		return "", fmt.Errorf("failed to resolve document path %s: %w", uri, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
