package port

import "context"

// ArchivedFile identifies a file stored in a cloud folder.
type ArchivedFile struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
}

// FolderArchiver uploads documents into a cloud folder.
type FolderArchiver interface {
	Upload(ctx context.Context, folderID, fileName string, content []byte) (*ArchivedFile, error)
}

// Summarizer condenses a raw work description into a one-line summary.
type Summarizer interface {
	Summarize(ctx context.Context, rawDescription string) (string, error)
	Model() string
}
