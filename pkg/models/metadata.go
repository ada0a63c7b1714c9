package models

import (
	"time"

	"github.com/marketscope/marketscope/config"
)

// RunMetadata is the completion record of a pipeline run. It is written
// after every other artifact, so its presence marks a complete run.
type RunMetadata struct {
	RunID         string    `json:"run_id"`
	CreatedAt     time.Time `json:"created_at"`
	Version       string    `json:"version"`
	FormatVersion string    `json:"format_version"`

	Settings config.Config `json:"settings"`

	RowsTotal   int `json:"rows_total"`
	RowsKept    int `json:"rows_kept"`
	RowsDropped int `json:"rows_dropped"`

	Metrics           RunMetrics         `json:"metrics"`
	ValidationSamples []ValidationSample `json:"validation_samples"`

	// OutputFiles maps artifact names to paths relative to the output dir.
	OutputFiles map[string]string `json:"output_files"`
}
