package files

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matdash/matdash/internal/metrics"
	"github.com/matdash/matdash/internal/smbclient"
)

// Upload is one file queued for the share.
type Upload struct {
	Name    string
	Content io.Reader
}

// FileResult is the per-file outcome within a batch.
type FileResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchResult summarizes one upload batch.
type BatchResult struct {
	BatchID   string       `json:"batch_id"`
	Results   []FileResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// Uploader pushes files to the share one at a time. Batches are
// strictly sequential; one failing file never aborts the rest.
type Uploader struct {
	client  *smbclient.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewUploader creates an uploader. metrics may be nil.
func NewUploader(client *smbclient.Client, m *metrics.Metrics, logger *zap.Logger) *Uploader {
	return &Uploader{client: client, metrics: m, logger: logger}
}

// UploadAll sends each file in order. onProgress, when non-nil, is
// called after every file with the percentage of the batch completed.
// The caller refreshes the listing exactly once afterwards, regardless
// of how many files were in the batch.
func (u *Uploader) UploadAll(ctx context.Context, path string, uploads []Upload, onProgress func(percent int)) *BatchResult {
	batch := &BatchResult{
		BatchID: uuid.New().String(),
		Results: make([]FileResult, 0, len(uploads)),
	}

	for i, up := range uploads {
		result := FileResult{Name: up.Name, Success: true}
		if err := u.client.Upload(ctx, path, up.Name, up.Content); err != nil {
			result.Success = false
			result.Error = err.Error()
			batch.Failed++
			u.record("failure")
			u.logger.Warn("file upload failed",
				zap.String("batch", batch.BatchID),
				zap.String("file", up.Name),
				zap.Error(err))
		} else {
			batch.Succeeded++
			u.record("success")
		}
		batch.Results = append(batch.Results, result)

		if onProgress != nil {
			onProgress((i + 1) * 100 / len(uploads))
		}
	}
	return batch
}

func (u *Uploader) record(outcome string) {
	if u.metrics != nil {
		u.metrics.RecordUpload(outcome)
	}
}
