// Package judge implements the multi-language execution and judging engine:
// language profiles, harness generation, process execution under resource
// limits, verdict classification, and submission orchestration.
package judge

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnsupportedLanguage indicates the requested language is not registered.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Command templates expand the following placeholders before spawning:
// {src} source file path, {bin} compiled binary path, {dir} unit directory,
// {class} main class name (java), {mem} memory limit in megabytes.
const (
	placeholderSrc   = "{src}"
	placeholderBin   = "{bin}"
	placeholderDir   = "{dir}"
	placeholderClass = "{class}"
	placeholderMem   = "{mem}"
)

// Profile describes how to materialise, compile, and run code for one language.
type Profile struct {
	ID         string
	Name       string
	Extension  string
	SourceFile string
	// CompileCmd is nil for interpreted languages. Compiled languages are
	// compiled once per submission and the binary is shared read-only
	// across test-case runs.
	CompileCmd []string
	RunCmd     []string

	DefaultTimeLimit time.Duration
	DefaultMemoryMB  int
}

// Compiled reports whether the profile requires a compile phase.
func (p Profile) Compiled() bool {
	return len(p.CompileCmd) > 0
}

// RuntimeMemoryLimit reports whether the run command carries its own memory
// flag. VM runtimes (node, java) reserve virtual address ranges far beyond
// real usage, so an address-space ulimit kills them during startup; their
// caps go through the runtime flag instead.
func (p Profile) RuntimeMemoryLimit() bool {
	for _, arg := range p.RunCmd {
		if strings.Contains(arg, placeholderMem) {
			return true
		}
	}
	return false
}

// ExpandCommand substitutes unit placeholders into a command template.
func ExpandCommand(tpl []string, srcPath, binPath, dir, class string) []string {
	replacer := strings.NewReplacer(
		placeholderSrc, srcPath,
		placeholderBin, binPath,
		placeholderDir, dir,
		placeholderClass, class,
	)

	expanded := make([]string, 0, len(tpl))
	for _, arg := range tpl {
		expanded = append(expanded, replacer.Replace(arg))
	}
	return expanded
}

// ExpandMemoryLimit substitutes the {mem} placeholder with the cap in
// megabytes. Arguments carrying the placeholder are dropped when no cap is
// set so the runtime falls back to its own default.
func ExpandMemoryLimit(tpl []string, memoryMB int) []string {
	expanded := make([]string, 0, len(tpl))
	for _, arg := range tpl {
		if !strings.Contains(arg, placeholderMem) {
			expanded = append(expanded, arg)
			continue
		}
		if memoryMB <= 0 {
			continue
		}
		expanded = append(expanded, strings.ReplaceAll(arg, placeholderMem, strconv.Itoa(memoryMB)))
	}
	return expanded
}

var profiles = map[string]Profile{
	"python": {
		ID:               "python",
		Name:             "Python 3",
		Extension:        ".py",
		SourceFile:       "main.py",
		RunCmd:           []string{"python3", placeholderSrc},
		DefaultTimeLimit: 5 * time.Second,
		DefaultMemoryMB:  256,
	},
	"javascript": {
		ID:               "javascript",
		Name:             "Node.js",
		Extension:        ".js",
		SourceFile:       "main.js",
		RunCmd:           []string{"node", "--max-old-space-size={mem}", placeholderSrc},
		DefaultTimeLimit: 5 * time.Second,
		DefaultMemoryMB:  256,
	},
	"c": {
		ID:               "c",
		Name:             "C (gcc)",
		Extension:        ".c",
		SourceFile:       "main.c",
		CompileCmd:       []string{"gcc", "-O2", "-std=c17", placeholderSrc, "-o", placeholderBin, "-lm"},
		RunCmd:           []string{placeholderBin},
		DefaultTimeLimit: 2 * time.Second,
		DefaultMemoryMB:  256,
	},
	"cpp": {
		ID:               "cpp",
		Name:             "C++ (g++)",
		Extension:        ".cpp",
		SourceFile:       "main.cpp",
		CompileCmd:       []string{"g++", "-O2", "-std=c++17", placeholderSrc, "-o", placeholderBin},
		RunCmd:           []string{placeholderBin},
		DefaultTimeLimit: 2 * time.Second,
		DefaultMemoryMB:  256,
	},
	"java": {
		ID:               "java",
		Name:             "Java",
		Extension:        ".java",
		CompileCmd:       []string{"javac", placeholderSrc},
		RunCmd:           []string{"java", "-Xmx{mem}m", "-cp", placeholderDir, placeholderClass},
		DefaultTimeLimit: 4 * time.Second,
		DefaultMemoryMB:  512,
	},
}

var aliases = map[string]string{
	"py":      "python",
	"python3": "python",
	"js":      "javascript",
	"node":    "javascript",
	"c++":     "cpp",
}

// Resolve looks up the profile for a language identifier. The lookup is
// case-insensitive and accepts common aliases (c++, js, py).
func Resolve(language string) (Profile, error) {
	id := strings.ToLower(strings.TrimSpace(language))
	if canonical, ok := aliases[id]; ok {
		id = canonical
	}

	profile, ok := profiles[id]
	if !ok {
		return Profile{}, ErrUnsupportedLanguage
	}
	return profile, nil
}

// Languages returns every registered profile sorted by identifier.
func Languages() []Profile {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Profile, 0, len(ids))
	for _, id := range ids {
		out = append(out, profiles[id])
	}
	return out
}
