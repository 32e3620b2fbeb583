package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/opendms/dms-api/internal/dto"
	"github.com/opendms/dms-api/internal/models"
	appErrors "github.com/opendms/dms-api/pkg/errors"
)

type headStore interface {
	ListMajor(ctx context.Context) ([]models.MajorHead, error)
	GetMajorByID(ctx context.Context, id int64) (*models.MajorHead, error)
	CreateMajor(ctx context.Context, name string) (int64, error)
	ListMinorByMajor(ctx context.Context, majorHeadID int64) ([]models.MinorHead, error)
	CreateMinor(ctx context.Context, majorHeadID int64, name string) (int64, error)
	DeleteMinor(ctx context.Context, id int64) error
}

// HeadService manages the classification taxonomy. Reads are open to any
// authenticated caller; mutations are admin only.
type HeadService struct {
	repo      headStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHeadService constructs the service.
func NewHeadService(repo headStore, validate *validator.Validate, logger *zap.Logger) *HeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &HeadService{repo: repo, validator: validate, logger: logger}
}

// ListMajor returns all major heads.
func (s *HeadService) ListMajor(ctx context.Context) ([]models.MajorHead, error) {
	heads, err := s.repo.ListMajor(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list major heads")
	}
	return heads, nil
}

// ListMinor returns the minor heads under one major head.
func (s *HeadService) ListMinor(ctx context.Context, majorHeadID int64) ([]models.MinorHead, error) {
	if _, err := s.repo.GetMajorByID(ctx, majorHeadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "major head not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load major head")
	}
	heads, err := s.repo.ListMinorByMajor(ctx, majorHeadID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list minor heads")
	}
	return heads, nil
}

// CreateMajor adds a top-level node.
func (s *HeadService) CreateMajor(ctx context.Context, req dto.CreateMajorHeadRequest, actor *models.JWTClaims) (*models.MajorHead, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid major head payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
	}

	id, err := s.repo.CreateMajor(ctx, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create major head")
	}
	s.logger.Info("major head created", zap.Int64("id", id), zap.String("name", name))
	return &models.MajorHead{ID: id, Name: name}, nil
}

// CreateMinor adds a child node under an existing major head.
func (s *HeadService) CreateMinor(ctx context.Context, req dto.CreateMinorHeadRequest, actor *models.JWTClaims) (*models.MinorHead, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid minor head payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
	}

	if _, err := s.repo.GetMajorByID(ctx, req.MajorHeadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "major head not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load major head")
	}

	id, err := s.repo.CreateMinor(ctx, req.MajorHeadID, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create minor head")
	}
	s.logger.Info("minor head created", zap.Int64("id", id), zap.Int64("major_head_id", req.MajorHeadID), zap.String("name", name))
	return &models.MinorHead{ID: id, MajorHeadID: req.MajorHeadID, Name: name}, nil
}

// DeleteMinor removes a child node.
func (s *HeadService) DeleteMinor(ctx context.Context, id int64, actor *models.JWTClaims) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteMinor(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "minor head not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete minor head")
	}
	s.logger.Info("minor head deleted", zap.Int64("id", id))
	return nil
}

func requireAdmin(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !actor.IsAdmin {
		return appErrors.ErrForbidden
	}
	return nil
}
