package inventory

import "github.com/shopspring/decimal"

const (
	// MoneyPlaces decimales de los importes.
	MoneyPlaces = 2
	// PricePlaces decimales del precio efectivo ponderado.
	PricePlaces = 6
)

// LineCost costo de un ingreso: cantidad * precio, redondeado a 2 decimales.
func LineCost(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(MoneyPlaces)
}

// MergeCost implementa la fusión de costo sobre una compra activa (servicio de dominio).
// NuevoTotal = TotalActual + round2(CantEntrada * PrecioEntrada)
// PrecioEfectivo = (CantActual*PrecioActual + CantEntrada*PrecioEntrada) / (CantActual + CantEntrada)
// El precio efectivo se pondera sobre los precios y no sobre el total redondeado:
// queda entre el menor y el mayor precio de entrada, así que nunca cae a cero.
func MergeCost(cantActual, totalActual, precioActual, cantEntrada, precioEntrada decimal.Decimal) (cantidad, total, precio decimal.Decimal) {
	cantidad = cantActual.Add(cantEntrada)
	total = totalActual.Add(LineCost(cantEntrada, precioEntrada))
	valor := cantActual.Mul(precioActual).Add(cantEntrada.Mul(precioEntrada))
	return cantidad, total, EffectiveUnitPrice(valor, cantidad)
}

// EffectiveUnitPrice valor / cantidad a 6 decimales; cero si no hay cantidad.
func EffectiveUnitPrice(valor, cantidad decimal.Decimal) decimal.Decimal {
	if cantidad.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return valor.DivRound(cantidad, PricePlaces)
}
