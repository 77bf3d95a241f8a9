package generation_test

import (
	"testing"

	"github.com/phrazzld/scry-queue/internal/domain"
	"github.com/phrazzld/scry-queue/internal/generation"
	"github.com/stretchr/testify/assert"
)

func TestExtractAnswer(t *testing.T) {
	t.Parallel()

	abcd := map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"}

	tests := []struct {
		name    string
		raw     string
		qType   domain.QuestionType
		options map[string]string
		want    string
	}{
		{"single plain", "B", domain.QuestionTypeSingle, abcd, "B"},
		{"single with prefix", "答案：C", domain.QuestionTypeSingle, abcd, "C"},
		{"single with full prefix", "正确答案: D", domain.QuestionTypeSingle, abcd, "D"},
		{"single keeps first option letter", "The answer is B, not C", domain.QuestionTypeSingle, abcd, "B"},
		{"single option text", "B. 4\n因为……", domain.QuestionTypeSingle, abcd, "B"},
		{"multiple letters", "A、C、D", domain.QuestionTypeMultiple, abcd, "ACD"},
		{"multiple dedupes", "ACA", domain.QuestionTypeMultiple, abcd, "AC"},
		{"multiple without options accepts any letter", "AE", domain.QuestionTypeMultiple, nil, "AE"},
		{"choice without letters is kept", "无法确定", domain.QuestionTypeSingle, abcd, "无法确定"},
		{"judge true", "正确", domain.QuestionTypeJudge, nil, generation.JudgeTrue},
		{"judge true english", "True", domain.QuestionTypeJudge, nil, generation.JudgeTrue},
		{"judge dui", "对", domain.QuestionTypeJudge, nil, generation.JudgeTrue},
		{"judge false", "错误", domain.QuestionTypeJudge, nil, generation.JudgeFalse},
		{"judge not correct", "不正确", domain.QuestionTypeJudge, nil, generation.JudgeFalse},
		{"judge false english", "false.", domain.QuestionTypeJudge, nil, generation.JudgeFalse},
		{"judge with prefix", "答案：错", domain.QuestionTypeJudge, nil, generation.JudgeFalse},
		{"judge unrecognised", "不确定", domain.QuestionTypeJudge, nil, "不确定"},
		{"essay untouched", "  要点一\n要点二  ", domain.QuestionTypeEssay, nil, "要点一\n要点二"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generation.ExtractAnswer(tt.raw, tt.qType, tt.options))
		})
	}
}
