// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taibuivan/bookreview/internal/platform/apperr"
)

type Service struct {
	repo   Reader
	logger *slog.Logger
}

func NewService(repo Reader, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetEntry returns a catalog entry with its aggregates, or NOT_FOUND.
func (service *Service) GetEntry(context context.Context, id string) (*Entry, error) {
	entry, err := service.repo.FindByID(context, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.NotFound("Book")
	}
	return entry, err
}
