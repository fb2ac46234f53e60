package services

import (
	"fmt"
	"strings"

	"github.com/leaguehq/league-system/models"
	"github.com/leaguehq/league-system/storage"
)

// Хелперы для заполнения публичных URL медиа из ключей хранилища.

func populateTeamLogoURL(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*team.LogoKey); url != "" {
			team.LogoURL = &url
		}
	}
}

func populateLeagueLogoURL(league *models.League, uploader storage.FileUploader) {
	if league != nil && league.LogoKey != nil && *league.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*league.LogoKey); url != "" {
			league.LogoURL = &url
		}
	}
}

func populateVenuePhotoURL(venue *models.Venue, uploader storage.FileUploader) {
	if venue != nil && venue.PhotoKey != nil && *venue.PhotoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*venue.PhotoKey); url != "" {
			venue.PhotoURL = &url
		}
	}
}

// GetExtensionFromContentType подбирает расширение файла для ключа в
// объектном хранилище по Content-Type загрузки.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}
