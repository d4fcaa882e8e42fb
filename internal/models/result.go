package models

import "time"

type AnalyzeResponse struct {
	Success         bool     `json:"success"`
	AnalysisID      string   `json:"analysisId"`
	Score           int      `json:"score"`
	Summary         string   `json:"summary"`
	MissingKeywords []string `json:"missingKeywords"`
	Suggestions     []string `json:"suggestions"`
	Message         string   `json:"message"`
}

type ExtractTextResponse struct {
	Success   bool   `json:"success"`
	Text      string `json:"text"`
	FileName  string `json:"fileName"`
	FileSize  int64  `json:"fileSize"`
	PageCount int    `json:"pageCount"`
}

type AnalysisResponse struct {
	ID              string    `json:"id"`
	Score           int       `json:"score"`
	Summary         string    `json:"summary"`
	MissingKeywords []string  `json:"missingKeywords"`
	Suggestions     []string  `json:"suggestions"`
	CreatedAt       time.Time `json:"createdAt"`
}

type SimilarAnalysisResponse struct {
	AnalysisID string  `json:"analysisId"`
	Score      int     `json:"score"`
	Similarity float32 `json:"similarity"`
	Snippet    string  `json:"snippet"`
}

type SimilarResponse struct {
	Query   string                    `json:"query"`
	Results []SimilarAnalysisResponse `json:"results"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}
