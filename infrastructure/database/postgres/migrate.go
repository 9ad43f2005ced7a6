package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Schema cria a tabela de histórico de execuções
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		task TEXT NOT NULL,
		source TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		result JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at ON analysis_runs (created_at DESC)`,
}

// Migrate aplica o schema dentro de uma transação
func Migrate(ctx context.Context, conn Conn) error {
	err := conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range Schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("erro ao aplicar migração %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithField("statements", len(Schema)).Info("Migrações aplicadas")
	return nil
}
