package artifacts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Masterminds/semver/v3"

	"github.com/marketscope/marketscope/pkg/models"
)

// FormatVersion is the artifact format version stamped into metadata.json.
// Readers accept artifacts sharing its major version.
const FormatVersion = "1.0.0"

var currentFormatVersion = semver.MustParse(FormatVersion)

// writeMetadata stamps the format version and writes metadata.json. It is
// the last artifact written; its presence marks the run as complete.
func (s *Store) writeMetadata(meta *models.RunMetadata) error {
	meta.FormatVersion = FormatVersion

	path := s.path(MetadataFile)
	err := writeAtomic(path, func(w io.Writer) error {
		encoded, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(encoded)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", MetadataFile, err)
	}

	log.Debugf("Wrote run metadata to %s", path)

	return nil
}

// ReadMetadata loads and validates a run's metadata.
func ReadMetadata(path string) (*models.RunMetadata, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// No metadata means the run never completed.
		return nil, models.NewNotFoundError("run metadata at " + path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var meta models.RunMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	version, err := semver.NewVersion(meta.FormatVersion)
	if err != nil {
		return nil, fmt.Errorf("error parsing artifact format version: %w", err)
	}
	if version.Major() != currentFormatVersion.Major() {
		return nil, fmt.Errorf(
			"unsupported artifact format version %s (want major %d)",
			meta.FormatVersion,
			currentFormatVersion.Major(),
		)
	}

	return &meta, nil
}
