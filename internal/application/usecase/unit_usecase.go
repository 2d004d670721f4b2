package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/application/dto"
	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// UnitUseCase casos de uso para unidades de medida.
type UnitUseCase struct {
	repo repository.UnitRepository
}

// NewUnitUseCase construye el caso de uso.
func NewUnitUseCase(repo repository.UnitRepository) *UnitUseCase {
	return &UnitUseCase{repo: repo}
}

// Create crea una unidad de medida. ConversionFactor en cero equivale a 1.
func (uc *UnitUseCase) Create(in dto.CreateUnitRequest) (*dto.UnitResponse, error) {
	if in.ConversionFactor.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	factor := in.ConversionFactor
	if factor.IsZero() {
		factor = decimal.NewFromInt(1)
	}
	now := time.Now()
	unit := &entity.Unit{
		ID:               uuid.New().String(),
		Name:             in.Name,
		Symbol:           in.Symbol,
		ConversionFactor: factor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(unit); err != nil {
		return nil, err
	}
	return toUnitResponse(unit), nil
}

// GetByID obtiene una unidad por ID.
func (uc *UnitUseCase) GetByID(id string) (*dto.UnitResponse, error) {
	unit, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, nil
	}
	return toUnitResponse(unit), nil
}

// List lista todas las unidades (catálogo pequeño, sin paginación).
func (uc *UnitUseCase) List() ([]dto.UnitResponse, error) {
	list, err := uc.repo.List()
	if err != nil {
		return nil, err
	}
	items := make([]dto.UnitResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *toUnitResponse(u))
	}
	return items, nil
}

// Delete elimina una unidad por ID.
func (uc *UnitUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func toUnitResponse(u *entity.Unit) *dto.UnitResponse {
	if u == nil {
		return nil
	}
	return &dto.UnitResponse{
		ID:               u.ID,
		Name:             u.Name,
		Symbol:           u.Symbol,
		ConversionFactor: u.ConversionFactor,
	}
}
