package service

import (
	"context"

	"rentool-backend/internal/domain"
	"rentool-backend/internal/repository"
)

type toolService struct {
	toolRepo repository.ToolRepository
}

func NewToolService(toolRepo repository.ToolRepository) ToolService {
	return &toolService{toolRepo: toolRepo}
}

func (s *toolService) GetTool(ctx context.Context, id int32) (*domain.Tool, error) {
	return s.toolRepo.GetByID(ctx, id)
}

func (s *toolService) ListTools(ctx context.Context, page, pageSize int32) ([]domain.Tool, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 25
	}
	return s.toolRepo.List(ctx, page, pageSize)
}
