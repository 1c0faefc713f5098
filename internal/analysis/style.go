package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

const maxLineLength = 100

// StyleReport summarises readability and convention findings for a submission.
type StyleReport struct {
	Score         int      `json:"score"`
	Issues        []string `json:"issues"`
	GoodPractices []string `json:"good_practices"`
	Compliance    string   `json:"compliance"`
	LineCount     int      `json:"line_count"`
	CommentRatio  float64  `json:"comment_ratio"`
}

var (
	pascalFuncRe = regexp.MustCompile(`\bdef\s+[A-Z][a-zA-Z]*\(`)
	typeHintRe   = regexp.MustCompile(`def\s+\w+\([^)]*\)\s*->\s*`)
	commentRe    = regexp.MustCompile(`^\s*(?:#|//|/\*|\*)`)
	docstringRe  = regexp.MustCompile(`"""|'''|/\*\*`)
)

// AnalyzeStyle scores readability: documentation, naming conventions, line
// length, and indentation consistency. The scale starts at 100 and findings
// deduct from it.
func AnalyzeStyle(code string) StyleReport {
	lines := strings.Split(code, "\n")
	score := 100
	var issues, good []string

	commentCount := 0
	for _, line := range lines {
		if commentRe.MatchString(line) {
			commentCount++
		}
	}

	if docstringRe.MatchString(code) {
		good = append(good, "function documentation present")
	} else if commentCount == 0 {
		issues = append(issues, "missing documentation and comments")
		score -= 20
	}

	if pascalFuncRe.MatchString(code) {
		issues = append(issues, "function names should use snake_case")
		score -= 10
	}

	var long []int
	for i, line := range lines {
		if len(line) > maxLineLength {
			long = append(long, i+1)
		}
	}
	if len(long) > 0 {
		if len(long) > 3 {
			long = long[:3]
		}
		issues = append(issues, fmt.Sprintf("lines longer than %d chars: %v", maxLineLength, long))
		score -= 5
	}

	if inconsistentIndentation(lines) {
		issues = append(issues, "inconsistent indentation")
		score -= 5
	}

	if strings.Contains(code, `if __name__ == "__main__"`) {
		good = append(good, "proper main guard")
	}

	if typeHintRe.MatchString(code) {
		good = append(good, "type hints present")
		score += 5
	}

	if commentCount > 0 {
		good = append(good, fmt.Sprintf("inline comments (%d lines)", commentCount))
	}

	score = clampScore(score)

	ratio := 0.0
	if len(lines) > 0 {
		ratio = float64(commentCount) / float64(len(lines)) * 100
	}

	return StyleReport{
		Score:         score,
		Issues:        issues,
		GoodPractices: good,
		Compliance:    complianceLevel(score),
		LineCount:     len(lines),
		CommentRatio:  ratio,
	}
}

// inconsistentIndentation reports whether more than two distinct indent
// widths appear, which usually means mixed tab/space or uneven levels.
func inconsistentIndentation(lines []string) bool {
	widths := map[int]struct{}{}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || !strings.HasPrefix(line, " ") {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if indent > 0 {
			widths[indent] = struct{}{}
		}
	}
	return len(widths) > 2
}

func complianceLevel(score int) string {
	switch {
	case score > 85:
		return "high"
	case score > 70:
		return "medium"
	default:
		return "low"
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
