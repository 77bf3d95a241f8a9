package generation

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"github.com/phrazzld/scry-queue/internal/domain"
)

// System prompts for the two generation tasks.
const (
	AnswerSystemPrompt      = "你是一个专业的题目答案生成助手。请根据题目内容和选项，给出准确的答案。"
	ExplanationSystemPrompt = "你是一个专业的题目解析生成助手。请提供简洁、清晰的解析。要求：1. 直接给出核心解释，不要使用Markdown格式；2. 控制在200字以内；3. 使用纯文本，可以换行但不要用特殊符号。"
)

var typeLabels = map[domain.QuestionType]string{
	domain.QuestionTypeSingle:   "单选题",
	domain.QuestionTypeMultiple: "多选题",
	domain.QuestionTypeJudge:    "判断题",
	domain.QuestionTypeEssay:    "简述题",
}

var answerInstructions = map[domain.QuestionType]string{
	domain.QuestionTypeSingle:   "请直接给出正确答案的选项字母（如：A）",
	domain.QuestionTypeMultiple: "请直接给出所有正确答案的选项字母（如：ACD）",
	domain.QuestionTypeJudge:    "请直接回答：正确 或 错误",
	domain.QuestionTypeEssay:    "请给出简洁的答案要点",
}

const questionHeader = `{{define "header"}}题型：{{.TypeLabel}}
题目：{{.Content}}
{{if .Options}}选项：
{{range .Options}}{{.Key}}. {{.Text}}
{{end}}{{end}}{{end}}`

var (
	answerTemplate = template.Must(template.New("answer").Parse(questionHeader +
		`{{template "header" .}}
{{.Instruction}}`))

	explanationTemplate = template.Must(template.New("explanation").Parse(questionHeader +
		`{{template "header" .}}{{if .Answer}}
正确答案：{{.Answer}}
{{end}}
请提供详细的解析，说明为什么这是正确答案，以及相关的知识点。`))
)

type option struct {
	Key  string
	Text string
}

type promptData struct {
	TypeLabel   string
	Content     string
	Options     []option
	Instruction string
	Answer      string
}

func newPromptData(q *domain.Question) promptData {
	label, ok := typeLabels[q.Type]
	if !ok {
		label = string(q.Type)
	}

	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := make([]option, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, option{Key: k, Text: q.Options[k]})
	}

	return promptData{
		TypeLabel: label,
		Content:   q.Content,
		Options:   opts,
	}
}

// AnswerPrompt renders the prompt asking for the answer of q.
func AnswerPrompt(q *domain.Question) (Prompt, error) {
	data := newPromptData(q)
	data.Instruction = answerInstructions[q.Type]
	if data.Instruction == "" {
		data.Instruction = answerInstructions[domain.QuestionTypeEssay]
	}

	user, err := render(answerTemplate, data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: AnswerSystemPrompt, User: user}, nil
}

// ExplanationPrompt renders the prompt asking for an explanation of q. The
// given answer is included when set, otherwise the stored answer is used.
func ExplanationPrompt(q *domain.Question, answer string) (Prompt, error) {
	data := newPromptData(q)
	data.Answer = answer
	if data.Answer == "" {
		data.Answer = q.Answer
	}

	user, err := render(explanationTemplate, data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: ExplanationSystemPrompt, User: user}, nil
}

func render(t *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: failed to execute %s prompt template: %v", ErrGenerationFailed, t.Name(), err)
	}
	return buf.String(), nil
}
