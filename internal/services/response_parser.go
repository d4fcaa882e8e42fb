package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/logger"
)

const (
	neutralScore = 50
	minScore     = 0
	maxScore     = 100

	defaultSummary     = "Analysis completed."
	fallbackSummary    = "Analysis completed, but the response format was unexpected."
	fallbackKeyword    = "Keywords could not be extracted"
	fallbackSuggestion = "Please try again with a different resume or job description"

	fieldScore           = "score"
	fieldSummary         = "summary"
	fieldMissingKeywords = "missingKeywords"
	fieldSuggestions     = "suggestions"

	answerPreviewLength = 300
)

// AnalysisResult is the validated ATS report. Only the parser builds it,
// so Score is always within [0,100] and the slices are never nil.
type AnalysisResult struct {
	Score           int      `json:"score"`
	Summary         string   `json:"summary"`
	MissingKeywords []string `json:"missingKeywords"`
	Suggestions     []string `json:"suggestions"`
	SourceText      string   `json:"-"`
}

type ResponseParser struct {
	logger *zap.Logger
}

func NewResponseParser(log *zap.Logger) *ResponseParser {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResponseParser{logger: log}
}

// Parse turns any model answer into a valid AnalysisResult. It never fails:
// malformed fields are defaulted one by one, and an answer that is not a JSON
// object at all yields the fixed fallback result.
func (p *ResponseParser) Parse(answer, sourceText string) *AnalysisResult {
	cleaned := stripCodeFence(answer)

	fields, ok := decodeObject(cleaned)
	if !ok {
		fields, ok = decodeObject(extractObjectSpan(cleaned))
	}
	if !ok {
		p.logger.Warn("model answer is not a JSON object, using fallback result",
			zap.Int("answer_length", len(answer)),
			zap.String("answer_preview", logger.TruncateForLog(answer, answerPreviewLength)),
		)
		return fallbackResult(sourceText)
	}

	result := &AnalysisResult{
		Score:           scoreField(lookupField(fields, fieldScore)),
		Summary:         summaryField(lookupField(fields, fieldSummary)),
		MissingKeywords: stringListField(lookupField(fields, fieldMissingKeywords)),
		Suggestions:     stringListField(lookupField(fields, fieldSuggestions)),
		SourceText:      sourceText,
	}

	p.logger.Debug("model answer parsed",
		zap.Int("score", result.Score),
		zap.Int("missing_keywords", len(result.MissingKeywords)),
		zap.Int("suggestions", len(result.Suggestions)),
	)

	return result
}

func fallbackResult(sourceText string) *AnalysisResult {
	return &AnalysisResult{
		Score:           neutralScore,
		Summary:         fallbackSummary,
		MissingKeywords: []string{fallbackKeyword},
		Suggestions:     []string{fallbackSuggestion},
		SourceText:      sourceText,
	}
}

// stripCodeFence removes a leading ``` fence (with optional language tag) and a trailing ``` fence.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	text = strings.TrimLeftFunc(text, isFenceTagRune)
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func isFenceTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+'
}

// extractObjectSpan returns the outermost {...} span, for answers with prose around the JSON.
func extractObjectSpan(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// decodeObject keeps numbers as json.Number so a score beyond float64 range
// still decodes and gets clamped instead of failing the whole object.
func decodeObject(text string) (map[string]any, bool) {
	if text == "" {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return fields, true
}

// lookupField matches name case-insensitively, preferring an exact match.
func lookupField(fields map[string]any, name string) any {
	if v, ok := fields[name]; ok {
		return v
	}

	var keys []string
	for k := range fields {
		if strings.EqualFold(k, name) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return fields[keys[0]]
}

func scoreField(v any) int {
	n, ok := v.(json.Number)
	if !ok {
		return neutralScore
	}

	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		// Overflow comes back as ±Inf and clamps by sign.
		if errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0) {
			return clampScore(f)
		}
		return neutralScore
	}
	if f != math.Trunc(f) {
		return neutralScore
	}
	return clampScore(f)
}

func clampScore(f float64) int {
	switch {
	case f < minScore:
		return minScore
	case f > maxScore:
		return maxScore
	default:
		return int(f)
	}
}

func summaryField(v any) string {
	s, ok := v.(string)
	if !ok {
		return defaultSummary
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultSummary
	}
	return s
}

var stringType = reflect.TypeOf("")

// stringListField keeps a list only when every item is a JSON string.
func stringListField(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return []string{}
	}
	for _, item := range raw {
		// mapstructure would turn null into "" instead of rejecting it.
		if item == nil {
			return []string{}
		}
	}

	items := make([]string, 0, len(raw))
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: rejectNonStrings,
		Result:     &items,
	})
	if err != nil {
		return []string{}
	}
	if err := dec.Decode(raw); err != nil {
		return []string{}
	}
	return items
}

// rejectNonStrings stops json.Number and other string-kinded types from
// being accepted as list items.
func rejectNonStrings(from, to reflect.Type, data any) (any, error) {
	if to.Kind() == reflect.String && from != stringType {
		return nil, fmt.Errorf("expected string, got %s", from)
	}
	return data, nil
}
