package generation

import (
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/scry-queue/internal/domain"
)

// Canonical judge answers.
const (
	JudgeTrue  = "正确"
	JudgeFalse = "错误"
)

var answerPrefixes = []string{"正确答案：", "正确答案:", "答案：", "答案:"}

// Negative forms are checked first since 不正确 contains 正确.
var (
	judgeFalseMarkers = []string{"不正确", "错误", "不对", "错", "false", "×"}
	judgeTrueMarkers  = []string{"正确", "对", "true", "√"}
)

// ExtractAnswer normalises raw model output for a question of type qType.
// Choice answers are reduced to their option letters, restricted to the keys
// of options when there are any, and judge answers to JudgeTrue or
// JudgeFalse. Output that cannot be normalised is returned trimmed.
func ExtractAnswer(raw string, qType domain.QuestionType, options map[string]string) string {
	answer := trimSpace(raw)
	for _, prefix := range answerPrefixes {
		answer = strings.ReplaceAll(answer, prefix, "")
	}
	answer = trimSpace(answer)

	switch qType {
	case domain.QuestionTypeSingle, domain.QuestionTypeMultiple:
		if letters := optionLetters(answer, options, qType == domain.QuestionTypeSingle); letters != "" {
			return letters
		}
	case domain.QuestionTypeJudge:
		lower := strings.ToLower(answer)
		if containsAny(lower, judgeFalseMarkers) {
			return JudgeFalse
		}
		if containsAny(lower, judgeTrueMarkers) {
			return JudgeTrue
		}
	}
	return answer
}

// optionLetters collects distinct upper-case ASCII letters in order of
// appearance, stopping after the first when single is set.
func optionLetters(s string, options map[string]string, single bool) string {
	var (
		b    strings.Builder
		seen [26]bool
	)
	for _, r := range s {
		if r < 'A' || r > 'Z' || seen[r-'A'] {
			continue
		}
		if len(options) > 0 {
			if _, ok := options[string(r)]; !ok {
				continue
			}
		}
		seen[r-'A'] = true
		b.WriteRune(r)
		if single {
			break
		}
	}
	return b.String()
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func trimSpace(s string) string {
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
