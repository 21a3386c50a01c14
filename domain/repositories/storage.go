package repositories

import (
	"context"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

// RunRecorder stores the audit trail of pipeline and speech runs
type RunRecorder interface {
	Record(ctx context.Context, record *entities.RunRecord) error
	// Recent returns up to limit records, newest first
	Recent(ctx context.Context, limit int) ([]*entities.RunRecord, error)
}
