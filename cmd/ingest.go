package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ingest"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/model"
	"github.com/spigell/hh-interviewer/internal/session"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <resume-file>",
	Short: "Index a résumé (.txt, .md or .docx) and open an interview for it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApplication()
	if err != nil {
		return err
	}
	defer a.Close()

	embedder, err := a.embedder(ctx)
	if err != nil {
		return err
	}
	idx, err := a.openIndex(ctx)
	if err != nil {
		return err
	}

	cfg := a.config.Ingest
	pipeline, err := ingest.NewPipeline(ingest.Config{
		ChunkSize:        cfg.ChunkSize,
		ChunkOverlap:     cfg.ChunkOverlap,
		EmbedConcurrency: cfg.EmbedConcurrency,
	}, ingest.Deps{Embedder: embedder, Index: idx, Logger: a.logger})
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	doc := &model.Document{Name: filepath.Base(abs), Path: abs}
	if err := a.store.CreateDocument(ctx, doc); err != nil {
		return err
	}

	log := a.logger.With(zap.String(logger.FieldDocumentID, doc.ID))
	log.Info("ingesting résumé", zap.String("path", abs))

	chunks, err := pipeline.Run(ctx, doc.ID, abs)
	if err != nil {
		return err
	}
	if err := a.store.MarkDocumentIndexed(ctx, doc.ID, chunks); err != nil {
		return err
	}

	svc := session.NewService(a.store, readOnlyEngine{}, a.publisher(), a.logger)
	iv, err := svc.Open(ctx, doc.ID)
	if err != nil {
		return err
	}

	log.Info("résumé indexed", zap.Int("chunks", chunks), zap.String(logger.FieldInterviewID, iv.ID))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "document:  %s (%d chunks)\n", doc.ID, chunks)
	fmt.Fprintf(out, "interview: %s\n", iv.ID)
	fmt.Fprintf(out, "start it with: %s interview %s\n", app, iv.ID)
	return nil
}
