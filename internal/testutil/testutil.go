// Package testutil provides shared test helpers for building content trees.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree creates a temporary directory holding files (relative path to
// content) and returns its path.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// ProofDoc renders a proof file with the given id, title, date and body.
// Authors and tags are written as YAML flow lists.
func ProofDoc(id int, title, date string, authors []string, body string) string {
	return fmt.Sprintf("---\npid: %d\ntitle: %q\nauthors: [%s]\ndate: %s\ntags: []\n---\n%s",
		id, title, quoteList(authors), date, body)
}

// WeekDoc renders a week descriptor with the given date, description and
// proof ids.
func WeekDoc(date, description string, proofs ...int) string {
	ids := make([]string, len(proofs))
	for i, p := range proofs {
		ids[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("date: %s\ndescription: %q\nproofs: [%s]\n",
		date, description, strings.Join(ids, ", "))
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
