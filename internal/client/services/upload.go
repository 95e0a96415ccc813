package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/cidadefoco/internal/client/api"
	"github.com/dmitrijs2005/cidadefoco/internal/client/models"
)

// UploadService manages standalone image assets (profile pictures).
type UploadService interface {
	UploadImage(ctx context.Context, path string) (*models.UploadResult, error)
	DeleteImage(ctx context.Context, publicID string) error
}

type uploadService struct {
	api *api.Client
}

func NewUploadService(apiClient *api.Client) UploadService {
	return &uploadService{api: apiClient}
}

func (s *uploadService) UploadImage(ctx context.Context, path string) (*models.UploadResult, error) {
	form := api.NewForm().AddFile("image", path)

	var result models.UploadResult
	if err := s.api.PostMultipart(ctx, "/upload", form, &result); err != nil {
		return nil, api.DefaultMessage(err, "could not upload image")
	}
	return &result, nil
}

func (s *uploadService) DeleteImage(ctx context.Context, publicID string) error {
	path := fmt.Sprintf("/upload/%s", url.PathEscape(publicID))
	return api.DefaultMessage(s.api.Delete(ctx, path, nil), "could not delete image")
}
