package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ats-checker/internal/services"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one resume against a job description and print the report as JSON",
	Example: `  ats-checker analyze --resume cv.pdf --job job.txt
  cat job.txt | ats-checker analyze --resume cv.pdf --job -`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		resumePath, _ := cmd.Flags().GetString("resume")
		jobPath, _ := cmd.Flags().GetString("job")
		return analyze(cmd.Context(), resumePath, jobPath, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "path to the resume PDF")
	analyzeCmd.Flags().String("job", "", "path to a job description text file, or - for stdin")
	_ = analyzeCmd.MarkFlagRequired("resume")
	_ = analyzeCmd.MarkFlagRequired("job")
}

func analyze(ctx context.Context, resumePath, jobPath string, stdin io.Reader, out io.Writer) error {
	cfg, log := bootstrap()
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		return err
	}

	content, err := os.ReadFile(resumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	jobDescription, err := readJobDescription(jobPath, stdin)
	if err != nil {
		return err
	}

	modelClient, err := newModelClient(ctx, cfg, log)
	if err != nil {
		return err
	}

	analyzer := services.NewAnalyzerService(services.NewPDFParserService(cfg.Storage.MaxFileSize), modelClient, log)

	result, err := analyzer.AnalyzeDocument(ctx, services.Document{
		Filename: filepath.Base(resumePath),
		Content:  content,
	}, jobDescription)
	if err != nil {
		log.Error("❌ Analysis failed", zap.Error(err))
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func readJobDescription(path string, stdin io.Reader) (string, error) {
	if path == "" {
		return "", errors.New("job description path is required")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}

	return string(data), nil
}
