package service

import (
	"context"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/apierror"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/dto"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/repository"

	"github.com/google/uuid"
)

// ProductoService is a read surface over the catalog. Product management is
// handled elsewhere; the orders flow only needs lookups and availability.
type ProductoService interface {
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil || p == nil {
		return nil, apierror.NotFound("producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductoListResponse{
		Data:  make([]dto.ProductoResponse, 0, len(productos)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range productos {
		resp.Data = append(resp.Data, *productoToResponse(&productos[i]))
	}
	return resp, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:          p.ID.String(),
		Codigo:      p.Codigo,
		Nombre:      p.Nombre,
		Categoria:   p.Categoria,
		PrecioVenta: p.PrecioVenta,
		EsCombo:     p.EsCombo,
		Activo:      p.Activo,
	}
	if p.Stock != nil {
		cantidad := p.Stock.Cantidad
		resp.Stock = &cantidad
	}
	for _, c := range p.Componentes {
		cr := dto.ComponenteResponse{
			ProductoID: c.ComponenteID.String(),
			Cantidad:   c.Cantidad,
		}
		if c.Componente != nil {
			cr.Nombre = c.Componente.Nombre
		}
		resp.Componentes = append(resp.Componentes, cr)
	}
	return resp
}
