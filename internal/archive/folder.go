// Package archive resolves cloud folder references for invoice archival.
package archive

import (
	"regexp"
	"strings"

	"invoicer/internal/domain"
)

var folderIDPattern = regexp.MustCompile(`folders/([a-zA-Z0-9_-]+)`)

// ExtractFolderID returns the Drive folder id from a share URL such as
// https://drive.google.com/drive/folders/<id>?usp=sharing.
func ExtractFolderID(folderURL string) (string, error) {
	folderURL = strings.TrimSpace(folderURL)
	if folderURL == "" {
		return "", domain.ErrDriveFolderMissing
	}
	m := folderIDPattern.FindStringSubmatch(folderURL)
	if m == nil {
		return "", domain.ErrInvalidDriveFolder
	}
	return m[1], nil
}
