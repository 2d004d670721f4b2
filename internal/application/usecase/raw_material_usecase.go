package usecase

import (
	"time"

	"github.com/innoquim/erp-backend/internal/application/dto"
	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// RawMaterialUseCase casos de uso CRUD para materias primas.
// Stock y AverageCost los mantiene el Kardex; este CRUD nunca los toca.
type RawMaterialUseCase struct {
	repo repository.RawMaterialRepository
}

// NewRawMaterialUseCase construye el caso de uso.
func NewRawMaterialUseCase(repo repository.RawMaterialRepository) *RawMaterialUseCase {
	return &RawMaterialUseCase{repo: repo}
}

// Create crea una materia prima; el repositorio genera el ID MPnnnnnn.
func (uc *RawMaterialUseCase) Create(in dto.CreateRawMaterialRequest) (*dto.RawMaterialResponse, error) {
	existing, _ := uc.repo.GetByCode(in.Code)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	material := &entity.RawMaterial{
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		UnitID:      in.UnitID,
		Density:     in.Density,
		MinStock:    in.MinStock,
		MaxStock:    in.MaxStock,
		UnitPrice:   in.UnitPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(material); err != nil {
		return nil, err
	}
	return toRawMaterialResponse(material), nil
}

// GetByID obtiene una materia prima por ID.
func (uc *RawMaterialUseCase) GetByID(id string) (*dto.RawMaterialResponse, error) {
	material, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, nil
	}
	return toRawMaterialResponse(material), nil
}

// Update actualiza datos maestros de una materia prima.
func (uc *RawMaterialUseCase) Update(id string, in dto.UpdateRawMaterialRequest) (*dto.RawMaterialResponse, error) {
	material, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, nil
	}
	if in.Name != nil {
		material.Name = *in.Name
	}
	if in.Description != nil {
		material.Description = *in.Description
	}
	if in.UnitID != nil {
		material.UnitID = *in.UnitID
	}
	if in.Density != nil {
		material.Density = in.Density
	}
	if in.MinStock != nil {
		material.MinStock = *in.MinStock
	}
	if in.MaxStock != nil {
		material.MaxStock = in.MaxStock
	}
	if in.UnitPrice != nil {
		material.UnitPrice = *in.UnitPrice
	}
	material.UpdatedAt = time.Now()
	if err := uc.repo.Update(material); err != nil {
		return nil, err
	}
	return toRawMaterialResponse(material), nil
}

// List lista materias primas con búsqueda por nombre/código y paginación.
func (uc *RawMaterialUseCase) List(search string, limit, offset int) (*dto.RawMaterialListResponse, error) {
	list, err := uc.repo.List(NormalizeSearch(search), limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RawMaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toRawMaterialResponse(m))
	}
	return &dto.RawMaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toRawMaterialResponse(m *entity.RawMaterial) *dto.RawMaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.RawMaterialResponse{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		UnitID:      m.UnitID,
		Density:     m.Density,
		MinStock:    m.MinStock,
		MaxStock:    m.MaxStock,
		Stock:       m.Stock,
		AverageCost: m.AverageCost,
		UnitPrice:   m.UnitPrice,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
