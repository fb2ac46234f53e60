package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/repositories"
	"github.com/leaguehq/league-system/storage"
)

var ErrVenueNameTaken = errors.New("venue name is already in use")

type VenueInput struct {
	Name     string  `json:"name"`
	City     *string `json:"city"`
	Capacity *int    `json:"capacity"`
}

type VenueService interface {
	Create(ctx context.Context, input VenueInput) (*models.Venue, error)
	GetByID(ctx context.Context, id int) (*models.Venue, error)
	List(ctx context.Context) ([]*models.Venue, error)
	Update(ctx context.Context, id int, input VenueInput) (*models.Venue, error)
	Delete(ctx context.Context, id int) error
	UploadPhoto(ctx context.Context, id int, contentType string, file io.Reader) (*models.Venue, error)
}

type venueService struct {
	venueRepo repositories.VenueRepository
	uploader  storage.FileUploader
	logger    *slog.Logger
}

func NewVenueService(venueRepo repositories.VenueRepository, uploader storage.FileUploader, logger *slog.Logger) VenueService {
	return &venueService{venueRepo: venueRepo, uploader: uploader, logger: logger}
}

func (s *venueService) Create(ctx context.Context, input VenueInput) (*models.Venue, error) {
	venue := &models.Venue{
		Name:     input.Name,
		City:     input.City,
		Capacity: input.Capacity,
	}
	if err := s.venueRepo.Create(ctx, venue); err != nil {
		if errors.Is(err, repositories.ErrVenueNameConflict) {
			return nil, ErrVenueNameTaken
		}
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}
	return venue, nil
}

func (s *venueService) GetByID(ctx context.Context, id int) (*models.Venue, error) {
	venue, err := s.venueRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrVenueNotFound) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	populateVenuePhotoURL(venue, s.uploader)
	return venue, nil
}

func (s *venueService) List(ctx context.Context) ([]*models.Venue, error) {
	venues, err := s.venueRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, venue := range venues {
		populateVenuePhotoURL(venue, s.uploader)
	}
	return venues, nil
}

func (s *venueService) Update(ctx context.Context, id int, input VenueInput) (*models.Venue, error) {
	venue, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	venue.Name = input.Name
	venue.City = input.City
	venue.Capacity = input.Capacity

	if err := s.venueRepo.Update(ctx, venue); err != nil {
		switch {
		case errors.Is(err, repositories.ErrVenueNotFound):
			return nil, ErrVenueNotFound
		case errors.Is(err, repositories.ErrVenueNameConflict):
			return nil, ErrVenueNameTaken
		}
		return nil, err
	}
	return venue, nil
}

func (s *venueService) Delete(ctx context.Context, id int) error {
	err := s.venueRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrVenueNotFound) {
		return ErrVenueNotFound
	}
	return err
}

func (s *venueService) UploadPhoto(ctx context.Context, id int, contentType string, file io.Reader) (*models.Venue, error) {
	venue, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("venues/%d/photo%s", id, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload venue photo: %w", err)
	}
	if err := s.venueRepo.UpdatePhotoKey(ctx, id, &key); err != nil {
		return nil, err
	}

	venue.PhotoKey = &key
	populateVenuePhotoURL(venue, s.uploader)
	s.logger.Info("venue photo uploaded", slog.Int("venue_id", id), slog.String("key", key))
	return venue, nil
}
