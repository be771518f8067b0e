package pascal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZeroICQ/pascal-compiler-sub000/sexy"
	"github.com/nalgeon/be"
)

func TestSexyAllTests(t *testing.T) {
	// Find all test files in the test/ directory
	testFiles, err := filepath.Glob("test/*_test.md")
	be.Err(t, err, nil)
	be.True(t, len(testFiles) > 0)

	for _, testFile := range testFiles {
		testName := strings.TrimSuffix(filepath.Base(testFile), ".md")

		t.Run(testName, func(t *testing.T) {
			content, err := os.ReadFile(testFile)
			be.Err(t, err, nil)

			testCases, err := sexy.ExtractTestCases(string(content))
			be.Err(t, err, nil)

			for _, tc := range testCases {
				t.Run(tc.Name, func(t *testing.T) {
					for i, assertion := range tc.Assertions {
						t.Run("assertion_"+string(rune('a'+i)), func(t *testing.T) {
							runAssertion(t, tc, assertion)
						})
					}
				})
			}
		})
	}
}

func runAssertion(t *testing.T, tc sexy.TestCase, assertion sexy.Assertion) {
	input := []byte(tc.Input)
	switch assertion.Type {
	case sexy.AssertionTypeTokens:
		var sb strings.Builder
		if err := WriteLexicalReport(&sb, input); err != nil {
			sb.WriteString(err.Error())
		}
		be.Equal(t, normalizeColumns(sb.String()), normalizeColumns(assertion.Content))

	case sexy.AssertionTypeCompileError:
		_, err := compileTestInput(tc.InputType, input)
		if err == nil {
			t.Fatalf("line %d: expected %q, compiled without error", tc.Line, assertion.Content)
		}
		be.Equal(t, err.Error(), assertion.Content)

	case sexy.AssertionTypeAST:
		node, err := parseTestInput(tc.InputType, input)
		be.Err(t, err, nil)
		assertMatches(t, tc, assertion, ToSExpr(node))

	case sexy.AssertionTypeTypes:
		node, err := compileTestInput(tc.InputType, input)
		be.Err(t, err, nil)
		assertMatches(t, tc, assertion, ToTypedSExpr(node))

	default:
		t.Fatalf("unknown assertion type: %s", assertion.Type)
	}
}

func assertMatches(t *testing.T, tc sexy.TestCase, assertion sexy.Assertion, rendered string) {
	t.Helper()
	actual, err := sexy.Parse(rendered)
	be.Err(t, err, nil)
	if err := sexy.Match(assertion.ParsedSexy, actual); err != nil {
		t.Errorf("line %d: %v\nfull tree: %s", tc.Line, err, rendered)
	}
}

// normalizeColumns collapses the whitespace between report fields so that
// golden files may align columns with spaces.
func normalizeColumns(report string) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimRight(report, "\n"), "\n") {
		lines = append(lines, strings.Join(strings.Fields(line), " "))
	}
	return strings.Join(lines, "\n")
}

func parseTestInput(inputType sexy.InputType, input []byte) (*ASTNode, error) {
	switch inputType {
	case sexy.InputTypePascalExpr:
		return ParseExpression(input)
	case sexy.InputTypePascalProgram:
		return Parse(input)
	}
	panic(unreachable("input type %q", inputType))
}

func compileTestInput(inputType sexy.InputType, input []byte) (*ASTNode, error) {
	switch inputType {
	case sexy.InputTypePascalExpr:
		return CompileExpression(input, NewScopeStack())
	case sexy.InputTypePascalProgram:
		root, _, err := Compile(input)
		return root, err
	}
	panic(unreachable("input type %q", inputType))
}
