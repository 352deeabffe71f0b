package http

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func toPurchaseResponse(p *entity.PurchaseRecord) dto.PurchaseResponse {
	return dto.PurchaseResponse{
		ID:          p.ID,
		WarehouseID: p.WarehouseID,
		ItemKind:    string(p.Item.Kind),
		ItemID:      p.Item.ID,
		SupplierID:  p.SupplierID,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		TotalCost:   p.TotalCost,
		EntryDate:   p.EntryDate.String(),
		Active:      p.Active,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toMovementResponse(e *entity.MovementEntry) dto.MovementResponse {
	return dto.MovementResponse{
		ID:               e.ID,
		Seq:              e.Seq,
		Direction:        string(e.Direction),
		Quantity:         e.Quantity,
		OccurredAt:       e.OccurredAt,
		Source:           string(e.Source),
		LinkedPurchaseID: e.LinkedPurchaseID,
		Observations:     e.Observations,
	}
}

func toMovementResponses(entries []*entity.MovementEntry) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toMovementResponse(e))
	}
	return out
}

func toKardexResponse(k *inventory.Kardex) dto.KardexResponse {
	lines := make([]dto.KardexLineResponse, 0, len(k.Lines))
	for _, l := range k.Lines {
		lines = append(lines, dto.KardexLineResponse{MovementResponse: toMovementResponse(l.Entry), Balance: l.Balance})
	}
	return dto.KardexResponse{
		WarehouseID: k.Key.WarehouseID,
		ItemKind:    string(k.Key.Item.Kind),
		ItemID:      k.Key.Item.ID,
		From:        k.From,
		To:          k.To,
		Opening:     k.Opening,
		Lines:       lines,
		Entradas:    k.Entradas,
		Salidas:     k.Salidas,
		Closing:     k.Closing,
		GeneratedAt: k.GeneratedAt,
	}
}

func toRebuildResponse(r *inventory.RebuildReport) dto.RebuildReportResponse {
	return dto.RebuildReportResponse{
		WarehouseID: r.Key.WarehouseID,
		ItemKind:    string(r.Key.Item.Kind),
		ItemID:      r.Key.Item.ID,
		Stored:      r.Stored,
		Derived:     r.Derived,
		WasHalted:   r.WasHalted,
		Consistent:  r.Consistent,
		Repaired:    r.Repaired,
	}
}
