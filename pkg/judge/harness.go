package judge

import (
	"fmt"
	"regexp"
	"strings"
)

// ExecutionUnit is the generated, self-contained runnable source for one
// (submission, test case) pair. Units are transient: materialised, executed,
// and deleted within a single evaluation, never shared across test cases.
type ExecutionUnit struct {
	Language   string
	FileName   string
	Source     []byte
	// EntryPoint is the discovered top-level function for interpreted
	// languages; empty when the candidate's own main is the entry.
	EntryPoint string
	// MainClass is the public class name for java units.
	MainClass string
}

var (
	pythonEntryRe = regexp.MustCompile(`(?m)^def\s+([A-Za-z_]\w*)\s*\(`)

	jsFunctionRe = regexp.MustCompile(`(?m)^\s*(?:async\s+)?function\s+([A-Za-z_$][\w$]*)\s*\(`)
	jsAssignRe   = regexp.MustCompile(`(?m)^\s*(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s*)?(?:function\b|\([^)]*\)\s*=>|[A-Za-z_$][\w$]*\s*=>)`)

	javaPublicClassRe = regexp.MustCompile(`public\s+(?:final\s+)?class\s+([A-Za-z_$][\w$]*)`)
	javaClassRe       = regexp.MustCompile(`(?m)^\s*(?:final\s+)?class\s+([A-Za-z_$][\w$]*)`)
)

// BuildUnit wraps candidate code so the runner can drive it uniformly.
// Discovery is parse-only: no candidate code is executed here. When no entry
// point can be found for an interpreted language, the unit is still produced
// and fails at runtime, which classifies as RUNTIME_ERROR.
func BuildUnit(code string, profile Profile) (ExecutionUnit, error) {
	switch profile.ID {
	case "python":
		return buildPythonUnit(code, profile), nil
	case "javascript":
		return buildJavaScriptUnit(code, profile), nil
	case "java":
		return buildJavaUnit(code), nil
	case "c", "cpp":
		// Compiled procedural languages supply their own main; the unit
		// is the source as submitted.
		return ExecutionUnit{
			Language: profile.ID,
			FileName: profile.SourceFile,
			Source:   []byte(code),
		}, nil
	default:
		return ExecutionUnit{}, fmt.Errorf("no harness strategy for language %q", profile.ID)
	}
}

// findPythonEntryPoint returns the first top-level function definition.
func findPythonEntryPoint(code string) string {
	if m := pythonEntryRe.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	return ""
}

func buildPythonUnit(code string, profile Profile) ExecutionUnit {
	entry := findPythonEntryPoint(code)

	var b strings.Builder
	b.WriteString(code)
	b.WriteString("\n\n")
	b.WriteString(pythonDriverPrelude)
	if entry == "" {
		b.WriteString(pythonDriverNoEntry)
	} else {
		b.WriteString(fmt.Sprintf(pythonDriverCall, entry))
	}

	return ExecutionUnit{
		Language:   profile.ID,
		FileName:   profile.SourceFile,
		Source:     []byte(b.String()),
		EntryPoint: entry,
	}
}

// The driver adapts stdin into call arguments in priority order: a single
// numeric literal, whitespace-delimited tokens, then the raw string.
const pythonDriverPrelude = `import sys as _judge_sys

def _judge_coerce(token):
    try:
        return int(token)
    except ValueError:
        pass
    try:
        return float(token)
    except ValueError:
        return token

def _judge_adapt(raw):
    tokens = raw.split()
    if not tokens:
        return []
    if len(tokens) == 1:
        return [_judge_coerce(raw.strip())]
    return [_judge_coerce(t) for t in tokens]

`

const pythonDriverCall = `if __name__ == "__main__":
    _judge_result = %s(*_judge_adapt(_judge_sys.stdin.read()))
    print(_judge_result)
`

const pythonDriverNoEntry = `if __name__ == "__main__":
    _judge_sys.stderr.write("no callable entry point found\n")
    _judge_sys.exit(1)
`

func findJavaScriptEntryPoint(code string) string {
	funcMatch := jsFunctionRe.FindStringSubmatchIndex(code)
	assignMatch := jsAssignRe.FindStringSubmatchIndex(code)

	switch {
	case funcMatch == nil && assignMatch == nil:
		return ""
	case assignMatch == nil || (funcMatch != nil && funcMatch[0] < assignMatch[0]):
		return code[funcMatch[2]:funcMatch[3]]
	default:
		return code[assignMatch[2]:assignMatch[3]]
	}
}

func buildJavaScriptUnit(code string, profile Profile) ExecutionUnit {
	entry := findJavaScriptEntryPoint(code)

	var b strings.Builder
	b.WriteString(code)
	b.WriteString("\n\n")
	if entry == "" {
		b.WriteString(jsDriverNoEntry)
	} else {
		b.WriteString(jsDriverPrelude)
		b.WriteString(fmt.Sprintf(jsDriverCall, entry))
	}

	return ExecutionUnit{
		Language:   profile.ID,
		FileName:   profile.SourceFile,
		Source:     []byte(b.String()),
		EntryPoint: entry,
	}
}

const jsDriverPrelude = `const _judgeRaw = require("fs").readFileSync(0, "utf8");

function _judgeCoerce(token) {
  const n = Number(token);
  return token.trim() !== "" && !Number.isNaN(n) ? n : token;
}

function _judgeAdapt(raw) {
  const tokens = raw.split(/\s+/).filter((t) => t.length > 0);
  if (tokens.length === 0) return [];
  if (tokens.length === 1) return [_judgeCoerce(raw.trim())];
  return tokens.map(_judgeCoerce);
}

`

const jsDriverCall = `console.log(String(%s(..._judgeAdapt(_judgeRaw))));
`

const jsDriverNoEntry = `process.stderr.write("no callable entry point found\n");
process.exit(1);
`

// findJavaMainClass returns the public class name, falling back to the first
// declared class.
func findJavaMainClass(code string) string {
	if m := javaPublicClassRe.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	if m := javaClassRe.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	return ""
}

func buildJavaUnit(code string) ExecutionUnit {
	class := findJavaMainClass(code)
	if class == "" {
		// Without a class the unit cannot compile; let the compiler
		// report it rather than guessing.
		class = "Main"
	}

	return ExecutionUnit{
		Language:  "java",
		FileName:  class + ".java",
		Source:    []byte(code),
		MainClass: class,
	}
}
