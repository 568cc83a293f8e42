package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si StockActual + CantEntrada <= 0 el costo actual se conserva (sin división por cero o negativa).
// El resultado se redondea a Scale decimales, los mismos que guarda el almacén.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	total := stockActual.Add(cantEntrada)
	if !total.IsPositive() {
		return costoActual
	}
	valor := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return valor.Div(total).Round(Scale)
}
