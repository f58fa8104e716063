package docsite

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/geostab/slopekit/internal/errors"
)

var titleCaser = cases.Title(language.English)

// BuildNav scans a docs source tree and derives a navigation tree: markdown
// files become leaves titled by their first heading (or a humanized filename),
// directories with pages become groups. index.md sorts first as Home.
func BuildNav(docsDir string) ([]NavEntry, error) {
	entries, err := scanDir(docsDir, "")
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.DocsLintError("nav-paths", "no markdown pages found under docs root")
	}
	return entries, nil
}

func scanDir(docsDir, rel string) ([]NavEntry, error) {
	full := filepath.Join(docsDir, filepath.FromSlash(rel))
	dirents, err := os.ReadDir(full)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError,
			"failed to scan docs tree").WithContext("path", full)
	}

	var files, dirs []string
	for _, d := range dirents {
		name := d.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		if d.IsDir() {
			dirs = append(dirs, name)
		} else if strings.HasSuffix(name, ".md") {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	sort.Strings(dirs)

	// index.md leads its group.
	for i, f := range files {
		if f == "index.md" && i != 0 {
			copy(files[1:i+1], files[:i])
			files[0] = "index.md"
			break
		}
	}

	var out []NavEntry
	for _, f := range files {
		relPath := path.Join(rel, f)
		title := pageTitle(filepath.Join(full, f), f)
		if f == "index.md" && rel == "" {
			title = "Home"
		}
		out = append(out, NavEntry{Title: title, Path: relPath})
	}
	for _, d := range dirs {
		children, err := scanDir(docsDir, path.Join(rel, d))
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			continue
		}
		out = append(out, NavEntry{Title: Humanize(d), Children: children})
	}
	return out, nil
}

// pageTitle uses the first level-one heading when the page has one, falling
// back to a humanized filename.
func pageTitle(fullPath, name string) string {
	f, err := os.Open(filepath.Clean(fullPath))
	if err != nil {
		return Humanize(strings.TrimSuffix(name, ".md"))
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
		break
	}
	return Humanize(strings.TrimSuffix(name, ".md"))
}

// Humanize turns a file or directory name into a display title.
func Humanize(name string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return titleCaser.String(s)
}

// Slugify normalizes a title into a URL-safe slug: diacritics stripped,
// lowercased, runs of non-alphanumerics collapsed to single hyphens.
func Slugify(title string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripMarks, title)
	if err != nil {
		plain = title
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(plain) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
