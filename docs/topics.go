// Package docs holds the cfund documentation topics, embedded in the binary.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.md
var docs embed.FS

// Index is the topic shown when none is requested.
const Index = "readme"

// Topic returns the content of a documentation topic, "*" stands for all of them.
func Topic(name string) (string, error) {
	if name == "*" {
		names, err := Names()
		if err != nil {
			return "", err
		}
		return Topics(names...)
	}
	content, err := docs.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", name, err)
	}
	return string(content), nil
}

// Topics returns the content of multiple documentation topics concatenated together.
func Topics(names ...string) (string, error) {
	var b bytes.Buffer
	for _, name := range names {
		content, err := Topic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// Names returns the sorted names of all topics but the index.
func Names() ([]string, error) {
	var names []string
	err := fs.WalkDir(docs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if base == Index {
			return nil
		}
		names = append(names, base)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Title returns the first heading of a topic, or its name if it has none.
func Title(name string) string {
	content, err := Topic(name)
	if err != nil {
		return name
	}
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		if title, ok := strings.CutPrefix(sc.Text(), "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	return name
}
