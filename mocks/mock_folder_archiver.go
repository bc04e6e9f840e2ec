package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoicer/internal/port"
)

// MockFolderArchiver is a mock implementation of port.FolderArchiver.
type MockFolderArchiver struct {
	mock.Mock
}

func (m *MockFolderArchiver) Upload(ctx context.Context, folderID, fileName string, content []byte) (*port.ArchivedFile, error) {
	args := m.Called(ctx, folderID, fileName, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ArchivedFile), args.Error(1)
}

// MockSummarizer is a mock implementation of port.Summarizer.
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, rawDescription string) (string, error) {
	args := m.Called(ctx, rawDescription)
	return args.String(0), args.Error(1)
}

func (m *MockSummarizer) Model() string {
	args := m.Called()
	return args.String(0)
}
