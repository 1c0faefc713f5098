// Package analysis provides static, language-agnostic heuristics scoring a
// code submission on algorithmic complexity, style, and security. Scores are
// on a 0-100 scale and feed into the overall submission grade alongside the
// execution correctness score.
package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

// ComplexityReport summarises the estimated time complexity of a submission.
type ComplexityReport struct {
	TimeComplexity string `json:"time_complexity"`
	LoopDepth      int    `json:"loop_depth"`
	HasRecursion   bool   `json:"has_recursion"`
	RecursiveCalls int    `json:"recursive_calls"`
	Score          int    `json:"score"`
	Summary        string `json:"summary"`
}

var (
	loopStartRe = regexp.MustCompile(`(?m)^(\s*)(?:for|while)\b`)

	pythonDefRe   = regexp.MustCompile(`(?m)^def\s+([A-Za-z_]\w*)\s*\(`)
	jsFuncRe      = regexp.MustCompile(`(?m)^\s*(?:async\s+)?function\s+([A-Za-z_$][\w$]*)\s*\(`)
	jsConstFuncRe = regexp.MustCompile(`(?m)^\s*(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s*)?(?:function\b|\()`)
	cStyleFuncRe  = regexp.MustCompile(`(?m)^\s*(?:[\w<>\[\]*&:]+\s+)+([A-Za-z_]\w*)\s*\([^;]*\)\s*\{`)
)

// AnalyzeComplexity estimates time complexity from loop nesting depth and
// self-referential calls. It is a heuristic over source text, not a proof:
// nesting is inferred from indentation and recursion from the first declared
// function calling itself.
func AnalyzeComplexity(code string) ComplexityReport {
	depth := maxLoopDepth(code)
	name := firstFunctionName(code)
	recursiveCalls := countRecursiveCalls(code, name)
	hasRecursion := recursiveCalls > 0

	var complexity string
	var score int
	switch {
	case hasRecursion && (strings.Contains(strings.ToLower(code), "fibonacci") || recursiveCalls > 1):
		complexity, score = "O(2^n)", 40
	case hasRecursion:
		complexity, score = "O(n)", 80
	case depth >= 3:
		complexity, score = "O(n^3)", 50
	case depth >= 2:
		complexity, score = "O(n^2)", 70
	case depth == 1:
		complexity, score = "O(n)", 90
	default:
		complexity, score = "O(1)", 100
	}

	return ComplexityReport{
		TimeComplexity: complexity,
		LoopDepth:      depth,
		HasRecursion:   hasRecursion,
		RecursiveCalls: recursiveCalls,
		Score:          score,
		Summary:        fmt.Sprintf("detected %d nested loops, recursion: %t", depth, hasRecursion),
	}
}

// maxLoopDepth infers loop nesting from indentation: a loop whose indent is
// deeper than an open loop's indent is nested inside it.
func maxLoopDepth(code string) int {
	matches := loopStartRe.FindAllStringSubmatch(code, -1)
	if len(matches) == 0 {
		return 0
	}

	var stack []int
	maxDepth := 0
	for _, m := range matches {
		indent := indentWidth(m[1])
		for len(stack) > 0 && indent <= stack[len(stack)-1] {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, indent)
		if len(stack) > maxDepth {
			maxDepth = len(stack)
		}
	}
	return maxDepth
}

func indentWidth(ws string) int {
	width := 0
	for _, r := range ws {
		if r == '\t' {
			width += 4
		} else {
			width++
		}
	}
	return width
}

// firstFunctionName returns the first declared function across the supported
// language syntaxes, or "".
func firstFunctionName(code string) string {
	for _, re := range []*regexp.Regexp{pythonDefRe, jsFuncRe, jsConstFuncRe, cStyleFuncRe} {
		if m := re.FindStringSubmatch(code); m != nil {
			return m[1]
		}
	}
	return ""
}

// countRecursiveCalls counts calls to name outside its own declaration lines.
func countRecursiveCalls(code, name string) int {
	if name == "" {
		return 0
	}

	quoted := regexp.QuoteMeta(name)
	callRe := regexp.MustCompile(`\b` + quoted + `\s*\(`)
	declRe := regexp.MustCompile(`(?:\bdef\s+|\bfunction\s+|(?:const|let|var)\s+|^\s*(?:[\w<>\[\]*&:]+\s+)+)` + quoted + `\b`)

	count := 0
	for _, line := range strings.Split(code, "\n") {
		if declRe.MatchString(line) {
			continue
		}
		count += len(callRe.FindAllString(line, -1))
	}
	return count
}
