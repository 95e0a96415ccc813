package services

import (
	"context"

	"github.com/dmitrijs2005/cidadefoco/internal/client/api"
)

// ProblemService submits problem reports: a photo plus a free-text
// description, sent as one multipart request.
type ProblemService interface {
	Report(ctx context.Context, photoPath, description string) error
}

type problemService struct {
	api *api.Client
}

func NewProblemService(apiClient *api.Client) ProblemService {
	return &problemService{api: apiClient}
}

func (s *problemService) Report(ctx context.Context, photoPath, description string) error {
	form := api.NewForm().
		AddFile("photo", photoPath).
		AddField("description", description)

	return api.DefaultMessage(s.api.PostMultipart(ctx, "/report-problem", form, nil), "could not report problem")
}
