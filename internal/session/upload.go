package session

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/media/sniffer"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/media/svg"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
)

// UploadImage stores a cover image and returns the key to use as a post's
// ImageURL. The backend hands out a presigned URL and the bytes go straight
// to it.
func (s *Store) UploadImage(ctx context.Context, fileName string, data []byte) (string, error) {
	fileName = filepath.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || len(data) == 0 {
		return "", &models.ValidationError{Message: "Please choose an image to upload"}
	}

	detected, err := sniffer.DetectFile(fileName, data)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnknownType) || errors.Is(err, sniffer.ErrTypeMismatch) {
			return "", &models.ValidationError{Message: err.Error()}
		}
		return "", err
	}
	if detected.Type == sniffer.TypeSVG {
		if data, err = svg.Sanitize(data); err != nil {
			return "", &models.ValidationError{Message: err.Error()}
		}
	}

	token, _, err := s.credentials()
	if err != nil {
		return "", err
	}

	target, err := s.client.RequestUpload(ctx, token, fileName, detected.MIME)
	if err != nil {
		return "", s.writeFailed(ctx, "request upload url", token, err)
	}
	if err := s.client.PutObject(ctx, target, detected.MIME, data); err != nil {
		s.log.Error().Err(err).Str("key", target.Key).Msg("image upload failed")
		return "", err
	}

	s.log.Info().Str("key", target.Key).Str("type", string(detected.Type)).Int("bytes", len(data)).Msg("image uploaded")
	return target.Key, nil
}
