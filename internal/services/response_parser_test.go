package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParse_ValidJSON(t *testing.T) {
	parser := NewResponseParser(zap.NewNop())

	result := parser.Parse(`{"score": 72, "summary": "Good match", "missingKeywords": ["Go", "gRPC"], "suggestions": ["Add metrics"]}`, "resume text")

	require.NotNil(t, result)
	assert.Equal(t, 72, result.Score)
	assert.Equal(t, "Good match", result.Summary)
	assert.Equal(t, []string{"Go", "gRPC"}, result.MissingKeywords)
	assert.Equal(t, []string{"Add metrics"}, result.Suggestions)
	assert.Equal(t, "resume text", result.SourceText)
}

func TestParse_FencedEqualsUnfenced(t *testing.T) {
	parser := NewResponseParser(nil)
	body := `{"score": 64, "summary": "Solid", "missingKeywords": ["Terraform"], "suggestions": ["Quantify impact", "Add a skills section"]}`

	tests := []struct {
		name   string
		answer string
	}{
		{name: "json tag", answer: "```json\n" + body + "\n```"},
		{name: "no tag", answer: "```\n" + body + "\n```"},
		{name: "surrounding whitespace", answer: "  \n```json\n" + body + "\n```  \n"},
		{name: "missing closing fence", answer: "```json\n" + body},
	}

	expected := parser.Parse(body, "src")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, expected, parser.Parse(tt.answer, "src"))
		})
	}
}

func TestParse_NotJSONReturnsFallback(t *testing.T) {
	parser := NewResponseParser(nil)

	for _, answer := range []string{"not json", "", "   ", "[1, 2, 3]", `"just a string"`, "null", "{broken"} {
		t.Run(answer, func(t *testing.T) {
			result := parser.Parse(answer, "original")

			require.NotNil(t, result)
			assert.Equal(t, 50, result.Score)
			assert.Equal(t, fallbackSummary, result.Summary)
			assert.Equal(t, []string{fallbackKeyword}, result.MissingKeywords)
			assert.Equal(t, []string{fallbackSuggestion}, result.Suggestions)
			assert.Equal(t, "original", result.SourceText)
		})
	}
}

func TestParse_ClampsHighScore(t *testing.T) {
	parser := NewResponseParser(nil)

	result := parser.Parse(`{"score": 150, "summary": "ok", "missingKeywords": [], "suggestions": ["x"]}`, "")

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, "ok", result.Summary)
	assert.NotNil(t, result.MissingKeywords)
	assert.Empty(t, result.MissingKeywords)
	assert.Equal(t, []string{"x"}, result.Suggestions)
}

func TestParse_ScoreField(t *testing.T) {
	parser := NewResponseParser(nil)

	tests := []struct {
		name     string
		answer   string
		expected int
	}{
		{name: "negative clamps to zero", answer: `{"score": -20}`, expected: 0},
		{name: "zero kept", answer: `{"score": 0}`, expected: 0},
		{name: "upper bound kept", answer: `{"score": 100}`, expected: 100},
		{name: "fractional", answer: `{"score": 72.5}`, expected: 50},
		{name: "integral float", answer: `{"score": 80.0}`, expected: 80},
		{name: "string", answer: `{"score": "85"}`, expected: 50},
		{name: "null", answer: `{"score": null}`, expected: 50},
		{name: "absent", answer: `{"summary": "x"}`, expected: 50},
		{name: "boolean", answer: `{"score": true}`, expected: 50},
		{name: "exponent integral", answer: `{"score": 4.2e1}`, expected: 42},
		{name: "overflow positive", answer: `{"score": 1e999}`, expected: 100},
		{name: "overflow negative", answer: `{"score": -1e999}`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.Parse(tt.answer, "").Score)
		})
	}
}

func TestParse_SummaryField(t *testing.T) {
	parser := NewResponseParser(nil)

	tests := []struct {
		name     string
		answer   string
		expected string
	}{
		{name: "kept", answer: `{"summary": "Strong backend profile"}`, expected: "Strong backend profile"},
		{name: "trimmed", answer: `{"summary": "  padded  "}`, expected: "padded"},
		{name: "blank", answer: `{"summary": "   "}`, expected: defaultSummary},
		{name: "absent", answer: `{"score": 10}`, expected: defaultSummary},
		{name: "wrong type", answer: `{"summary": 42}`, expected: defaultSummary},
		{name: "null", answer: `{"summary": null}`, expected: defaultSummary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.Parse(tt.answer, "").Summary)
		})
	}
}

func TestParse_ListFields(t *testing.T) {
	parser := NewResponseParser(nil)

	tests := []struct {
		name     string
		answer   string
		expected []string
	}{
		{name: "kept in order", answer: `{"missingKeywords": ["b", "a", "c"]}`, expected: []string{"b", "a", "c"}},
		{name: "empty", answer: `{"missingKeywords": []}`, expected: []string{}},
		{name: "absent", answer: `{"score": 1}`, expected: []string{}},
		{name: "null", answer: `{"missingKeywords": null}`, expected: []string{}},
		{name: "string instead of list", answer: `{"missingKeywords": "Python"}`, expected: []string{}},
		{name: "numbers in list", answer: `{"missingKeywords": [1, 2]}`, expected: []string{}},
		{name: "object instead of list", answer: `{"missingKeywords": {"a": "b"}}`, expected: []string{}},
		{name: "blank items kept", answer: `{"missingKeywords": ["Go", " ", ""]}`, expected: []string{"Go", " ", ""}},
		{name: "null item", answer: `{"missingKeywords": ["Go", null]}`, expected: []string{}},
		{name: "number item", answer: `{"missingKeywords": ["Go", 3]}`, expected: []string{}},
		{name: "boolean item", answer: `{"missingKeywords": ["Go", true]}`, expected: []string{}},
		{name: "nested list", answer: `{"missingKeywords": [["Go"]]}`, expected: []string{}},
		{name: "object item", answer: `{"missingKeywords": [{"name": "Go"}]}`, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Parse(tt.answer, "")
			require.NotNil(t, result.MissingKeywords)
			require.NotNil(t, result.Suggestions)
			assert.Equal(t, tt.expected, result.MissingKeywords)
		})
	}
}

func TestParse_CaseInsensitiveKeys(t *testing.T) {
	parser := NewResponseParser(nil)

	result := parser.Parse(`{"Score": 61, "SUMMARY": "Upper", "missingkeywords": ["k8s"], "Suggestions": ["s1"]}`, "")

	assert.Equal(t, 61, result.Score)
	assert.Equal(t, "Upper", result.Summary)
	assert.Equal(t, []string{"k8s"}, result.MissingKeywords)
	assert.Equal(t, []string{"s1"}, result.Suggestions)
}

func TestParse_ExactKeyPreferred(t *testing.T) {
	parser := NewResponseParser(nil)

	result := parser.Parse(`{"Score": 10, "score": 90}`, "")

	assert.Equal(t, 90, result.Score)
}

func TestParse_ProseAroundJSON(t *testing.T) {
	parser := NewResponseParser(nil)

	answer := "Here is the analysis you asked for:\n{\"score\": 55, \"summary\": \"Average\", \"missingKeywords\": [\"AWS\"], \"suggestions\": []}\nLet me know if you need more."
	result := parser.Parse(answer, "")

	assert.Equal(t, 55, result.Score)
	assert.Equal(t, "Average", result.Summary)
	assert.Equal(t, []string{"AWS"}, result.MissingKeywords)
	assert.Equal(t, []string{}, result.Suggestions)
}

func TestParse_AlwaysWithinBounds(t *testing.T) {
	parser := NewResponseParser(nil)

	answers := []string{
		`{"score": 1e9}`,
		`{"score": -1e9}`,
		`{"score": 99999999999999999999}`,
		`{"score": 1e999}`,
		`{"score": -1e999}`,
		`{}`,
		`garbage`,
		"```json\n{\"score\": 101}\n```",
	}

	for _, answer := range answers {
		result := parser.Parse(answer, "")
		assert.GreaterOrEqual(t, result.Score, 0, answer)
		assert.LessOrEqual(t, result.Score, 100, answer)
		assert.NotNil(t, result.MissingKeywords, answer)
		assert.NotNil(t, result.Suggestions, answer)
		assert.NotEmpty(t, result.Summary, answer)
	}
}

func TestParse_OutOfRangeScoreKeepsOtherFields(t *testing.T) {
	parser := NewResponseParser(nil)

	tests := []struct {
		answer   string
		expected int
	}{
		{answer: `{"score": 1e999, "summary": "ok", "missingKeywords": ["Go"], "suggestions": ["x"]}`, expected: 100},
		{answer: `{"score": -1e999, "summary": "ok", "missingKeywords": ["Go"], "suggestions": ["x"]}`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			result := parser.Parse(tt.answer, "src")

			assert.Equal(t, tt.expected, result.Score)
			assert.Equal(t, "ok", result.Summary)
			assert.Equal(t, []string{"Go"}, result.MissingKeywords)
			assert.Equal(t, []string{"x"}, result.Suggestions)
			assert.Equal(t, "src", result.SourceText)
		})
	}
}

func TestParse_TwoObjectsFallsBack(t *testing.T) {
	parser := NewResponseParser(nil)

	result := parser.Parse(`{"score": 30} {"score": 90}`, "")

	assert.Equal(t, fallbackSummary, result.Summary)
	assert.Equal(t, 50, result.Score)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{in: "```json\n{}\n```", expected: "{}"},
		{in: "```JSON {}```", expected: "{}"},
		{in: "{}", expected: "{}"},
		{in: "  {}  ", expected: "{}"},
		{in: "```\n{}", expected: "{}"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, stripCodeFence(tt.in), tt.in)
	}
}
