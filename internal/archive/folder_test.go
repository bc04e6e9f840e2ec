package archive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"invoicer/internal/archive"
	"invoicer/internal/domain"
)

func TestExtractFolderID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr error
	}{
		{"plain", "https://drive.google.com/drive/folders/1AbC_d-9", "1AbC_d-9", nil},
		{"query string", "https://drive.google.com/drive/folders/xyz123?usp=sharing", "xyz123", nil},
		{"user path", "https://drive.google.com/drive/u/0/folders/F0LD3R", "F0LD3R", nil},
		{"empty", "  ", "", domain.ErrDriveFolderMissing},
		{"file link", "https://drive.google.com/file/d/abc/view", "", domain.ErrInvalidDriveFolder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := archive.ExtractFolderID(tt.url)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
