package analysis

import "regexp"

// SecurityReport summarises dangerous constructs found in a submission.
type SecurityReport struct {
	Score     int      `json:"score"`
	Issues    []string `json:"issues"`
	RiskLevel string   `json:"risk_level"`
}

type securityRule struct {
	re      *regexp.Regexp
	message string
	penalty int
}

var dangerousRules = []securityRule{
	{regexp.MustCompile(`\beval\s*\(`), "use of eval() can execute arbitrary code", 30},
	{regexp.MustCompile(`\bexec\s*\(`), "use of exec() can execute arbitrary code", 30},
	{regexp.MustCompile(`__import__\s*\(`), "dynamic imports can be risky", 15},
	{regexp.MustCompile(`\bos\.system\s*\(`), "system command execution detected", 25},
	{regexp.MustCompile(`\bsubprocess\.\w+\s*\(`), "subprocess usage, ensure input validation", 15},
	{regexp.MustCompile(`\bpickle\.loads?\s*\(`), "pickle deserialization can be unsafe", 20},
	{regexp.MustCompile(`\bchild_process\b`), "child process spawning detected", 25},
	{regexp.MustCompile(`Runtime\.getRuntime\(\)\.exec`), "runtime command execution detected", 25},
	{regexp.MustCompile(`\bnew\s+Function\s*\(`), "dynamic function construction detected", 25},
}

var sqlConcatRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)["'](?:SELECT|INSERT|UPDATE|DELETE)\b[^"']*["']\s*[+%]`),
	regexp.MustCompile(`(?i)f["'][^"']*(?:SELECT|INSERT|UPDATE|DELETE)\b[^"']*\{[^}]*\}`),
}

var hardcodedCredentialRe = regexp.MustCompile(`(?i)(password|secret|apikey|api_key|token)\s*=\s*["'][^"']+["']`)

// AnalyzeSecurity scans for dangerous constructs: dynamic code execution,
// shell calls, unsafe deserialization, string-built SQL, and hardcoded
// credentials. Deductions stack; the score floors at zero.
func AnalyzeSecurity(code string) SecurityReport {
	score := 100
	var issues []string

	for _, rule := range dangerousRules {
		if rule.re.MatchString(code) {
			issues = append(issues, rule.message)
			score -= rule.penalty
		}
	}

	for _, re := range sqlConcatRules {
		if re.MatchString(code) {
			issues = append(issues, "potential SQL injection via string-built query")
			score -= 25
			break
		}
	}

	if hardcodedCredentialRe.MatchString(code) {
		issues = append(issues, "hardcoded credentials detected")
		score -= 20
	}

	if score < 0 {
		score = 0
	}

	return SecurityReport{
		Score:     score,
		Issues:    issues,
		RiskLevel: riskLevel(score),
	}
}

func riskLevel(score int) string {
	switch {
	case score > 80:
		return "low"
	case score > 60:
		return "medium"
	default:
		return "high"
	}
}
