package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/cidadefoco/internal/client/api"
	"github.com/dmitrijs2005/cidadefoco/internal/client/models"
)

// PublicationService covers the feed. List returns the full server-side
// collection every time; there is no pagination or client-side patching, and
// callers refetch after a like/unlike rather than updating counts locally.
type PublicationService interface {
	List(ctx context.Context) ([]models.Publication, error)
	Create(ctx context.Context, photoPath, description string) (*models.Publication, error)
	Like(ctx context.Context, id int64) error
	Unlike(ctx context.Context, id int64) error
}

type publicationService struct {
	api *api.Client
}

func NewPublicationService(apiClient *api.Client) PublicationService {
	return &publicationService{api: apiClient}
}

func (s *publicationService) List(ctx context.Context) ([]models.Publication, error) {
	var pubs []models.Publication
	if err := s.api.GetJSON(ctx, "/publicacoes", &pubs); err != nil {
		return nil, api.DefaultMessage(err, "could not load publications")
	}
	return pubs, nil
}

func (s *publicationService) Create(ctx context.Context, photoPath, description string) (*models.Publication, error) {
	form := api.NewForm().
		AddFile("photo", photoPath).
		AddField("description", description)

	var created models.Publication
	if err := s.api.PostMultipart(ctx, "/publicacoes", form, &created); err != nil {
		return nil, api.DefaultMessage(err, "could not create publication")
	}
	return &created, nil
}

func (s *publicationService) Like(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/publicacoes/%d/curtir", id)
	return api.DefaultMessage(s.api.PostJSON(ctx, path, nil, nil), "could not like publication")
}

func (s *publicationService) Unlike(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/publicacoes/%d/descurtir", id)
	return api.DefaultMessage(s.api.PostJSON(ctx, path, nil, nil), "could not unlike publication")
}
