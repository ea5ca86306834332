package service

import (
	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// Promoción vigente: 2 tragos x S/10. Cada par de unidades de la categoría
// "tragos" se cobra a precio fijo de pack; las unidades impares van a precio
// de carta.
const categoriaTragos = "tragos"

var precioPackTragos = decimal.NewFromInt(10)

// PrecioLinea computes the charged subtotal for a line, applying promotions.
// It is a pure function of (producto, cantidad): the same inputs always yield
// the same subtotal, at order creation and again at settlement. Client-sent
// prices are never consulted.
func PrecioLinea(p *model.Producto, cantidad int) decimal.Decimal {
	if cantidad <= 0 {
		return decimal.Zero
	}
	qty := decimal.NewFromInt(int64(cantidad))
	if p.Categoria == categoriaTragos && cantidad >= 2 {
		pares := int64(cantidad / 2)
		sueltos := int64(cantidad % 2)
		return precioPackTragos.Mul(decimal.NewFromInt(pares)).
			Add(p.PrecioVenta.Mul(decimal.NewFromInt(sueltos)))
	}
	return p.PrecioVenta.Mul(qty)
}

// PrecioUnitario is the catalog price recorded on the line. Promotions apply
// at the line-subtotal level; the unit price stays as printed on the carta.
func PrecioUnitario(p *model.Producto) decimal.Decimal {
	return p.PrecioVenta
}
