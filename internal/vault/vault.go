package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// Entry is one child of a folder listing.
type Entry struct {
	Name        string `json:"name"`
	IsContainer bool   `json:"isContainer"`
}

// Resolver resolves mentionable references to text content.
type Resolver interface {
	Resolve(ctx context.Context, m types.Mentionable) (string, error)
	ListChildren(ctx context.Context, folder string, depth int) ([]Entry, error)
}

// Actions is the host action interface consumed by the tool dispatcher.
type Actions interface {
	WriteFull(ctx context.Context, path, content string) error
	AppendOrInsert(ctx context.Context, path, content string, position *int) error
	SearchAndReplace(ctx context.Context, path, search, replace string) (string, error)
	ReadFull(ctx context.Context, path string) (string, error)
	ListTree(ctx context.Context, path string, recursive bool) ([]string, error)
}

// Vault is a filesystem-backed implementation of Resolver and Actions.
type Vault struct {
	root   string
	ignore []string
	fetch  *URLFetcher

	mu     sync.RWMutex
	active string
}

// New creates a vault rooted at dir. Ignore globs (doublestar syntax)
// exclude paths from folder and tree listings.
func New(dir string, ignore []string) *Vault {
	return &Vault{
		root:   dir,
		ignore: append([]string{".vaultmind/**", ".git/**"}, ignore...),
		fetch:  NewURLFetcher(),
	}
}

// Root returns the vault root directory.
func (v *Vault) Root() string { return v.root }

// SetActive records the currently active resource path ("" for none).
func (v *Vault) SetActive(path string) {
	v.mu.Lock()
	v.active = path
	v.mu.Unlock()
}

// ActivePath returns the currently active resource path, or "".
func (v *Vault) ActivePath() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.active
}

// abs maps a vault-relative path to an absolute one, confined to the root.
func (v *Vault) abs(rel string) (string, error) {
	clean := filepath.Clean("/" + rel)
	full := filepath.Join(v.root, clean)
	if !strings.HasPrefix(full, filepath.Clean(v.root)) {
		return "", fmt.Errorf("path escapes vault: %s", rel)
	}
	return full, nil
}

// Resolve returns the text content for a mentionable, or a ResolutionError.
func (v *Vault) Resolve(ctx context.Context, m types.Mentionable) (string, error) {
	switch m.Kind {
	case types.MentionFile:
		content, err := v.ReadFull(ctx, m.Path)
		if err != nil {
			return "", &types.ResolutionError{Ref: m.Key(), Err: err}
		}
		return AddLineNumbers(content, 1), nil

	case types.MentionFolder:
		children, err := v.ListChildren(ctx, m.Path, 1)
		if err != nil {
			return "", &types.ResolutionError{Ref: m.Key(), Err: err}
		}
		return renderTree(children), nil

	case types.MentionBlock:
		content, err := v.ReadFull(ctx, m.Path)
		if err != nil {
			return "", &types.ResolutionError{Ref: m.Key(), Err: err}
		}
		block, err := sliceLines(content, m.StartLine, m.EndLine)
		if err != nil {
			return "", &types.ResolutionError{Ref: m.Key(), Err: err}
		}
		return AddLineNumbers(block, m.StartLine), nil

	case types.MentionCurrent:
		active := v.ActivePath()
		if active == "" {
			return "", &types.ResolutionError{Ref: m.Key(), Err: fmt.Errorf("no active resource")}
		}
		content, err := v.ReadFull(ctx, active)
		if err != nil {
			return "", &types.ResolutionError{Ref: m.Key(), Err: err}
		}
		return AddLineNumbers(content, 1), nil

	case types.MentionURL:
		text, err := v.fetch.Markdown(ctx, m.URL)
		if err != nil {
			return "", &types.ResolutionError{Ref: m.Key(), Err: err}
		}
		return text, nil

	case types.MentionCorpus:
		paths, err := v.ListTree(ctx, "", true)
		if err != nil {
			return "", &types.ResolutionError{Ref: m.Key(), Err: err}
		}
		return strings.Join(paths, "\n"), nil

	default:
		return "", &types.ResolutionError{Ref: m.Key(), Err: fmt.Errorf("unsupported mentionable kind %q", m.Kind)}
	}
}

// ListChildren returns the ordered children of a folder. depth > 1
// descends into subfolders, prefixing names with their relative path.
func (v *Vault) ListChildren(ctx context.Context, folder string, depth int) ([]Entry, error) {
	if depth <= 0 {
		depth = 1
	}
	full, err := v.abs(folder)
	if err != nil {
		return nil, err
	}
	return v.listChildren(full, folder, depth)
}

func (v *Vault) listChildren(full, rel string, depth int) ([]Entry, error) {
	dirents, err := os.ReadDir(full)
	if err != nil {
		return nil, err
	}
	sort.Slice(dirents, func(i, j int) bool { return dirents[i].Name() < dirents[j].Name() })

	var entries []Entry
	for _, d := range dirents {
		childRel := filepath.Join(rel, d.Name())
		if v.ignored(childRel) {
			continue
		}
		name := d.Name()
		if rel != "" && depth > 1 {
			name = childRel
		}
		entries = append(entries, Entry{Name: name, IsContainer: d.IsDir()})
		if d.IsDir() && depth > 1 {
			sub, err := v.listChildren(filepath.Join(full, d.Name()), childRel, depth-1)
			if err != nil {
				continue
			}
			entries = append(entries, sub...)
		}
	}
	return entries, nil
}

// ReadFull returns the full text content of a file.
func (v *Vault) ReadFull(ctx context.Context, path string) (string, error) {
	full, err := v.abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(full)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a folder, not a file: %s", path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	if isBinary(data) {
		return "", fmt.Errorf("file appears to be binary: %s", path)
	}
	return string(data), nil
}

// WriteFull writes the complete content of a file, creating parents.
func (v *Vault) WriteFull(ctx context.Context, path, content string) error {
	full, err := v.abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0o644)
}

// AppendOrInsert appends content to a file, or inserts it before the given
// 1-based line when position is set. A missing file is created.
func (v *Vault) AppendOrInsert(ctx context.Context, path, content string, position *int) error {
	existing, err := v.ReadFull(ctx, path)
	if err != nil {
		if os.IsNotExist(err) {
			return v.WriteFull(ctx, path, content)
		}
		return err
	}

	if position == nil {
		sep := ""
		if existing != "" && !strings.HasSuffix(existing, "\n") {
			sep = "\n"
		}
		return v.WriteFull(ctx, path, existing+sep+content)
	}

	lines := strings.Split(existing, "\n")
	at := *position - 1
	if at < 0 {
		at = 0
	}
	if at > len(lines) {
		at = len(lines)
	}
	inserted := append(lines[:at:at], append(strings.Split(content, "\n"), lines[at:]...)...)
	return v.WriteFull(ctx, path, strings.Join(inserted, "\n"))
}

// ListTree returns ordered vault-relative paths under path. When recursive
// is false only direct children are returned, folders with a "/" suffix.
func (v *Vault) ListTree(ctx context.Context, path string, recursive bool) ([]string, error) {
	if !recursive {
		children, err := v.ListChildren(ctx, path, 1)
		if err != nil {
			return nil, err
		}
		paths := make([]string, 0, len(children))
		for _, c := range children {
			p := filepath.Join(path, c.Name)
			if c.IsContainer {
				p += "/"
			}
			paths = append(paths, p)
		}
		return paths, nil
	}

	start, err := v.abs(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	err = filepath.WalkDir(start, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(v.root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		if v.ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// AddLineNumbers prefixes each line with its number, padded to the width
// of the largest line number in the range.
func AddLineNumbers(content string, startLine int) string {
	lines := strings.Split(content, "\n")
	width := len(fmt.Sprint(startLine + len(lines) - 1))
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%*d | %s", width, startLine+i, line)
	}
	return sb.String()
}

// renderTree renders folder children in the tree style used for prompt
// context blocks.
func renderTree(entries []Entry) string {
	var sb strings.Builder
	for i, e := range entries {
		prefix := "├── "
		if i == len(entries)-1 {
			prefix = "└── "
		}
		sb.WriteString(prefix)
		sb.WriteString(e.Name)
		if e.IsContainer {
			sb.WriteByte('/')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// sliceLines extracts the inclusive 1-based line range [start, end].
func sliceLines(content string, start, end int) (string, error) {
	lines := strings.Split(content, "\n")
	if start < 1 || end < start || start > len(lines) {
		return "", fmt.Errorf("invalid line range %d-%d (file has %d lines)", start, end, len(lines))
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

func isBinary(data []byte) bool {
	n := len(data)
	if n > 8000 {
		n = 8000
	}
	if n == 0 {
		return false
	}
	nonPrintable := 0
	for _, b := range data[:n] {
		if b == 0 {
			return true
		}
		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(n) > 0.3
}
