package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"invoicer/internal/config"
	"invoicer/internal/domain"
	"invoicer/internal/port"
)

const serviceName = "googleDrive"

type driveClient struct {
	files *drive.FilesService
}

// NewDriveClient creates a FolderArchiver authorized by a long-lived
// refresh token. The access token is refreshed on demand.
func NewDriveClient(ctx context.Context, cfg *config.DriveConfig, httpClient *http.Client) (port.FolderArchiver, error) {
	const op = "gdrive.NewDriveClient"

	if !cfg.Configured() {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrMissingCredentials)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	srv, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("%s: creating drive service: %w", op, err)
	}
	return &driveClient{files: srv.Files}, nil
}

func (c *driveClient) Upload(ctx context.Context, folderID, fileName string, content []byte) (*port.ArchivedFile, error) {
	meta := &drive.File{
		Name:     fileName,
		Parents:  []string{folderID},
		MimeType: "application/pdf",
	}
	file, err := c.files.Create(meta).
		Media(bytes.NewReader(content), googleapi.ContentType("application/pdf")).
		Fields("id", "name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, toUpstream(err)
	}
	return &port.ArchivedFile{FileID: file.Id, FileName: file.Name}, nil
}

func toUpstream(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = gerr.Error()
		}
		return &domain.UpstreamError{Service: serviceName, Status: gerr.Code, Message: msg, Err: err}
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		status := 0
		if rerr.Response != nil {
			status = rerr.Response.StatusCode
		}
		return &domain.UpstreamError{Service: serviceName, Status: status, Message: "token refresh failed", Err: err}
	}
	return &domain.UpstreamError{Service: serviceName, Message: err.Error(), Err: err}
}
