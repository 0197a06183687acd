package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ecofix/backend/go/internal/geocoding"
	"ecofix/backend/go/internal/models"
	"ecofix/backend/go/internal/tracker_service/store"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxPhotoBytes 是观测照片的大小上限。
const MaxPhotoBytes = 5 << 20

var allowedPhotoTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// PhotoUpload 是随观测上传的照片。
type PhotoUpload struct {
	Filename string
	Content  io.Reader
}

// ObservationInput 是提交环境观测所需的字段，Photo 可为 nil。
type ObservationInput struct {
	Type        models.ObservationType
	Description string
	Location    string
	Photo       *PhotoUpload
}

// SubmitObservation 解析地址、保存照片并记录观测。
func (s *Service) SubmitObservation(ctx context.Context, userID uint, in ObservationInput) (*models.EnvironmentalObservation, error) {
	if !in.Type.Valid() {
		return nil, invalid("observation_type", fmt.Sprintf("unknown observation type %q", in.Type))
	}
	in.Location = strings.TrimSpace(in.Location)
	if in.Location == "" {
		return nil, ErrInvalidLocation
	}

	loc, err := s.geocoder.Geocode(ctx, in.Location)
	if errors.Is(err, geocoding.ErrNotFound) {
		s.log.WithField("location", in.Location).Warn("location could not be geocoded")
		return nil, ErrInvalidLocation
	}
	if err != nil {
		return nil, fmt.Errorf("地址解析失败: %w", err)
	}

	obs := &models.EnvironmentalObservation{
		UserID:          userID,
		ObservationType: in.Type,
		Description:     strings.TrimSpace(in.Description),
		Location:        in.Location,
		Latitude:        loc.Latitude,
		Longitude:       loc.Longitude,
	}
	if in.Photo != nil {
		key, err := s.storePhoto(ctx, in.Photo)
		if err != nil {
			return nil, err
		}
		obs.PhotoKey = key
	}

	if err := s.store.CreateObservation(obs); err != nil {
		return nil, fmt.Errorf("保存观测失败: %w", err)
	}
	s.publish(ctx, userID, models.EventObservationSubmitted, map[string]interface{}{
		"observation_id":   obs.ID,
		"observation_type": obs.ObservationType,
		"latitude":         obs.Latitude,
		"longitude":        obs.Longitude,
	})
	return obs, nil
}

// storePhoto 校验照片类型与大小，并以 observations/<uuid><ext> 为键上传。
func (s *Service) storePhoto(ctx context.Context, photo *PhotoUpload) (string, error) {
	if s.photos == nil {
		return "", ErrPhotoStorageDisabled
	}
	data, err := io.ReadAll(io.LimitReader(photo.Content, MaxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("读取照片失败: %w", err)
	}
	if len(data) > MaxPhotoBytes {
		return "", invalid("photo", fmt.Sprintf("photo must not exceed %d MB", MaxPhotoBytes>>20))
	}
	if len(data) == 0 {
		return "", invalid("photo", "photo is empty")
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedPhotoTypes...) {
		s.log.WithField("content_type", mtype.String()).WithField("filename", photo.Filename).Warn("rejected observation photo")
		return "", invalid("photo", "photo must be a JPEG, PNG, GIF or WebP image")
	}

	key := "observations/" + uuid.NewString() + mtype.Extension()
	if err := s.photos.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mtype.String()); err != nil {
		return "", err
	}
	return key, nil
}

// ObservationMap 返回所有观测的地图标记。
func (s *Service) ObservationMap() ([]models.MapMarker, error) {
	return s.store.MapMarkers()
}

// ListObservations 分页返回观测，obsType 为空时返回所有类型。
func (s *Service) ListObservations(obsType string, page int) (*store.Page, error) {
	t := models.ObservationType(obsType)
	if t != "" && !t.Valid() {
		return nil, invalid("type", fmt.Sprintf("unknown observation type %q", obsType))
	}
	return s.store.ListObservations(t, page, s.pageSize)
}
