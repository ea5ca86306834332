package service

import (
	"context"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/repository"
)

// MesaService lists tables with their active order, for the floor view.
// Table state mutations happen only through the order flow.
type MesaService interface {
	Listar(ctx context.Context) ([]dto.MesaResponse, error)
}

type mesaService struct {
	repo      repository.MesaRepository
	ordenRepo repository.OrdenRepository
}

func NewMesaService(repo repository.MesaRepository, ordenRepo repository.OrdenRepository) MesaService {
	return &mesaService{repo: repo, ordenRepo: ordenRepo}
}

func (s *mesaService) Listar(ctx context.Context) ([]dto.MesaResponse, error) {
	mesas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MesaResponse, 0, len(mesas))
	for _, m := range mesas {
		mr := dto.MesaResponse{
			ID:        m.ID.String(),
			Numero:    m.Numero,
			Capacidad: m.Capacidad,
			Estado:    m.Estado,
		}
		if m.Estado != model.MesaDisponible {
			if orden, err := s.ordenRepo.FindActivaPorMesa(ctx, m.ID); err == nil && orden != nil {
				id := orden.ID.String()
				mr.OrdenActiva = &id
			}
		}
		out = append(out, mr)
	}
	return out, nil
}
