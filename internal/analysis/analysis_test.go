package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeComplexityConstant(t *testing.T) {
	report := AnalyzeComplexity("def add(a, b):\n    return a + b\n")
	require.Equal(t, "O(1)", report.TimeComplexity)
	require.Equal(t, 100, report.Score)
	require.Zero(t, report.LoopDepth)
	require.False(t, report.HasRecursion)
}

func TestAnalyzeComplexitySingleLoop(t *testing.T) {
	code := "def total(xs):\n    s = 0\n    for x in xs:\n        s += x\n    return s\n"
	report := AnalyzeComplexity(code)
	require.Equal(t, "O(n)", report.TimeComplexity)
	require.Equal(t, 90, report.Score)
	require.Equal(t, 1, report.LoopDepth)
}

func TestAnalyzeComplexityNestedLoops(t *testing.T) {
	code := "def pairs(xs):\n    for a in xs:\n        for b in xs:\n            print(a, b)\n"
	report := AnalyzeComplexity(code)
	require.Equal(t, "O(n^2)", report.TimeComplexity)
	require.Equal(t, 70, report.Score)
	require.Equal(t, 2, report.LoopDepth)
}

func TestAnalyzeComplexityTripleNesting(t *testing.T) {
	code := "for i in a:\n    for j in b:\n        for k in c:\n            pass\n"
	report := AnalyzeComplexity(code)
	require.Equal(t, "O(n^3)", report.TimeComplexity)
	require.Equal(t, 50, report.Score)
}

func TestAnalyzeComplexitySequentialLoopsNotNested(t *testing.T) {
	code := "for i in a:\n    pass\nfor j in b:\n    pass\n"
	report := AnalyzeComplexity(code)
	require.Equal(t, 1, report.LoopDepth)
	require.Equal(t, "O(n)", report.TimeComplexity)
}

func TestAnalyzeComplexityLinearRecursion(t *testing.T) {
	code := "def countdown(n):\n    if n == 0:\n        return 0\n    return countdown(n - 1)\n"
	report := AnalyzeComplexity(code)
	require.True(t, report.HasRecursion)
	require.Equal(t, 1, report.RecursiveCalls)
	require.Equal(t, "O(n)", report.TimeComplexity)
	require.Equal(t, 80, report.Score)
}

func TestAnalyzeComplexityExponentialRecursion(t *testing.T) {
	code := "def fib(n):\n    if n < 2:\n        return n\n    return fib(n - 1) + fib(n - 2)\n"
	report := AnalyzeComplexity(code)
	require.True(t, report.HasRecursion)
	require.Equal(t, 2, report.RecursiveCalls)
	require.Equal(t, "O(2^n)", report.TimeComplexity)
	require.Equal(t, 40, report.Score)
}

func TestAnalyzeComplexityJavaScriptRecursion(t *testing.T) {
	code := "function fact(n) {\n  if (n <= 1) return 1;\n  return n * fact(n - 1);\n}\n"
	report := AnalyzeComplexity(code)
	require.True(t, report.HasRecursion)
	require.Equal(t, "O(n)", report.TimeComplexity)
}

func TestAnalyzeStyleCleanCode(t *testing.T) {
	code := "def add(a, b):\n    \"\"\"Return the sum.\"\"\"\n    return a + b\n"
	report := AnalyzeStyle(code)
	require.Equal(t, 100, report.Score)
	require.Equal(t, "high", report.Compliance)
	require.Contains(t, report.GoodPractices, "function documentation present")
}

func TestAnalyzeStyleMissingDocs(t *testing.T) {
	report := AnalyzeStyle("def add(a, b):\n    return a + b\n")
	require.Equal(t, 80, report.Score)
	require.Contains(t, report.Issues, "missing documentation and comments")
}

func TestAnalyzeStylePascalCaseFunction(t *testing.T) {
	report := AnalyzeStyle("def AddNumbers(a, b):\n    # sum\n    return a + b\n")
	require.Contains(t, report.Issues, "function names should use snake_case")
}

func TestAnalyzeStyleLongLines(t *testing.T) {
	code := "# ok\nx = " + strings.Repeat("1 + ", 40) + "1\n"
	report := AnalyzeStyle(code)

	found := false
	for _, issue := range report.Issues {
		if strings.Contains(issue, "longer than") {
			found = true
		}
	}
	require.True(t, found)
}

func TestAnalyzeStyleTypeHintsBonusClamped(t *testing.T) {
	code := "def add(a: int, b: int) -> int:\n    \"\"\"Return the sum.\"\"\"\n    return a + b\n"
	report := AnalyzeStyle(code)
	require.Equal(t, 100, report.Score)
	require.Contains(t, report.GoodPractices, "type hints present")
}

func TestAnalyzeSecurityClean(t *testing.T) {
	report := AnalyzeSecurity("def add(a, b):\n    return a + b\n")
	require.Equal(t, 100, report.Score)
	require.Equal(t, "low", report.RiskLevel)
	require.Empty(t, report.Issues)
}

func TestAnalyzeSecurityEval(t *testing.T) {
	report := AnalyzeSecurity("result = eval(user_input)\n")
	require.Equal(t, 70, report.Score)
	require.Equal(t, "medium", report.RiskLevel)
	require.Len(t, report.Issues, 1)
}

func TestAnalyzeSecurityStackedPenalties(t *testing.T) {
	code := "import os, pickle\nos.system(cmd)\npickle.loads(blob)\neval(x)\n"
	report := AnalyzeSecurity(code)
	require.Equal(t, 25, report.Score)
	require.Equal(t, "high", report.RiskLevel)
}

func TestAnalyzeSecurityFloorsAtZero(t *testing.T) {
	code := "eval(x)\nexec(y)\nos.system(z)\npickle.loads(b)\n__import__(m)\npassword = \"hunter2\"\n"
	report := AnalyzeSecurity(code)
	require.Equal(t, 0, report.Score)
}

func TestAnalyzeSecuritySQLConcat(t *testing.T) {
	code := "query = \"SELECT * FROM users WHERE id = \" + user_id\n"
	report := AnalyzeSecurity(code)
	require.Equal(t, 75, report.Score)
	require.Contains(t, report.Issues[0], "SQL injection")
}

func TestAnalyzeSecurityHardcodedCredentials(t *testing.T) {
	report := AnalyzeSecurity("api_key = \"sk-123456\"\n")
	require.Equal(t, 80, report.Score)
	require.Contains(t, report.Issues[0], "credentials")
}
