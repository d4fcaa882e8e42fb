package services

import (
	"fmt"
	"strings"
)

// Prompt is the two-message instruction sent to the model.
type Prompt struct {
	System string
	User   string
}

const analysisSystemPrompt = `You are an ATS (Applicant Tracking System) expert. You analyze resumes against job descriptions and answer with a single JSON object containing exactly the fields score, summary, missingKeywords and suggestions. Never write anything before or after that JSON object.`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt creates the ATS compatibility prompt. The output depends only on its inputs.
func (pb *PromptBuilder) BuildAnalysisPrompt(resumeText, jobDescription string) (Prompt, error) {
	resumeText = strings.TrimSpace(resumeText)
	jobDescription = strings.TrimSpace(jobDescription)

	if resumeText == "" {
		return Prompt{}, fmt.Errorf("%w: resume text is empty", ErrInvalidInput)
	}
	if jobDescription == "" {
		return Prompt{}, fmt.Errorf("%w: job description is empty", ErrInvalidInput)
	}

	user := fmt.Sprintf(`Analyze this resume against the job description for ATS (Applicant Tracking System) compatibility.

JOB DESCRIPTION:
%s

RESUME:
%s

Return your analysis as a single JSON object with exactly this shape:
{
  "score": <integer 0-100>,
  "summary": "<2-3 sentence overall assessment of how well the resume matches the job>",
  "missingKeywords": ["<keyword>", "<keyword>"],
  "suggestions": ["<suggestion>", "<suggestion>", "<suggestion>"]
}

Field rules:
- score: integer from 0 to 100 rating ATS compatibility with this job description
- summary: 2-3 sentences assessing the overall match quality
- missingKeywords: important terms that appear in the job description but are absent from the resume
- suggestions: 3-5 specific, actionable improvements to the resume

Return ONLY the JSON object. Do not wrap it in markdown and do not add any text before or after it.`,
		jobDescription, resumeText)

	return Prompt{
		System: analysisSystemPrompt,
		User:   user,
	}, nil
}
