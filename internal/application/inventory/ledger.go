package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	DefaultPageSize    = 100
	MaxPageSize        = 500
	MaxObservationsLen = 500
)

// ErrNoRenderer el motor se construyó sin KardexRenderer.
var ErrNoRenderer = errors.New("kardex: no hay generador de PDF configurado")

// LedgerPage página del libro de una clave. NextAfter es el cursor para la siguiente página (0 si no hay más).
// Limit es el tamaño efectivo, ya con el valor por defecto y el tope aplicados.
type LedgerPage struct {
	Entries   []*entity.MovementEntry
	Limit     int
	NextAfter int64
	HasMore   bool
}

// KardexLine movimiento con el saldo acumulado después de aplicarlo.
type KardexLine struct {
	Entry   *entity.MovementEntry
	Balance decimal.Decimal
}

// Kardex tarjeta de stock de una clave en un rango.
type Kardex struct {
	Key         entity.StockKey
	From        *time.Time
	To          *time.Time
	Opening     decimal.Decimal // saldo antes de From
	Lines       []KardexLine
	Entradas    decimal.Decimal
	Salidas     decimal.Decimal
	Closing     decimal.Decimal
	GeneratedAt time.Time
}

// LedgerUseCase lecturas de auditoría del libro. No toma locks.
type LedgerUseCase struct {
	ledger   repository.MovementRepository
	renderer KardexRenderer
	opts     Options
}

// ListForKey movimientos de la clave en orden de inserción. Reanudable con filter.After.
// From es inclusivo y To exclusivo.
func (uc *LedgerUseCase) ListForKey(ctx context.Context, key entity.StockKey, filter entity.LedgerFilter) (*LedgerPage, error) {
	if err := validateLedgerQuery(key, &filter); err != nil {
		return nil, err
	}
	limit := filter.Limit
	filter.Limit = limit + 1
	entries, err := uc.ledger.ListForKey(ctx, key, filter)
	if err != nil {
		return nil, err
	}
	page := &LedgerPage{Entries: entries, Limit: limit}
	if len(entries) > limit {
		page.Entries = entries[:limit]
		page.HasMore = true
		page.NextAfter = page.Entries[limit-1].Seq
	}
	return page, nil
}

// Kardex arma la tarjeta de stock con saldo inicial y saldo corrido.
func (uc *LedgerUseCase) Kardex(ctx context.Context, key entity.StockKey, from, to *time.Time) (*Kardex, error) {
	filter := entity.LedgerFilter{From: from, To: to}
	if err := validateLedgerQuery(key, &filter); err != nil {
		return nil, err
	}
	k := &Kardex{Key: key, From: from, To: to, GeneratedAt: uc.opts.now()}

	if from != nil {
		err := uc.scan(ctx, key, entity.LedgerFilter{To: from}, func(e *entity.MovementEntry) {
			k.Opening = k.Opening.Add(e.Signed())
		})
		if err != nil {
			return nil, err
		}
	}
	balance := k.Opening
	err := uc.scan(ctx, key, entity.LedgerFilter{From: from, To: to}, func(e *entity.MovementEntry) {
		balance = balance.Add(e.Signed())
		if e.Direction == entity.DirectionEntrada {
			k.Entradas = k.Entradas.Add(e.Quantity)
		} else {
			k.Salidas = k.Salidas.Add(e.Quantity)
		}
		k.Lines = append(k.Lines, KardexLine{Entry: e, Balance: balance})
	})
	if err != nil {
		return nil, err
	}
	k.Closing = balance
	return k, nil
}

// KardexPDF genera el kardex en PDF.
func (uc *LedgerUseCase) KardexPDF(ctx context.Context, key entity.StockKey, from, to *time.Time) ([]byte, error) {
	if uc.renderer == nil {
		return nil, ErrNoRenderer
	}
	k, err := uc.Kardex(ctx, key, from, to)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderKardex(ctx, k)
}

// scan recorre el libro completo del rango por páginas.
func (uc *LedgerUseCase) scan(ctx context.Context, key entity.StockKey, filter entity.LedgerFilter, fn func(*entity.MovementEntry)) error {
	filter.Limit = MaxPageSize
	for {
		entries, err := uc.ledger.ListForKey(ctx, key, filter)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fn(e)
		}
		if len(entries) < filter.Limit {
			return nil
		}
		filter.After = entries[len(entries)-1].Seq
	}
}

func validateLedgerQuery(key entity.StockKey, filter *entity.LedgerFilter) error {
	if err := key.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return fmt.Errorf("%w: rango de fechas vacío", domain.ErrValidation)
	}
	if filter.After < 0 {
		return fmt.Errorf("%w: cursor inválido", domain.ErrValidation)
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultPageSize
	case filter.Limit > MaxPageSize:
		filter.Limit = MaxPageSize
	}
	return nil
}

// newEntry arma un movimiento listo para Append.
func newEntry(key entity.StockKey, dir entity.Direction, qty decimal.Decimal, at time.Time, src entity.MovementSource, linked *string, obs string) *entity.MovementEntry {
	return &entity.MovementEntry{
		WarehouseID:      key.WarehouseID,
		Item:             key.Item,
		Direction:        dir,
		Quantity:         qty,
		OccurredAt:       at,
		Source:           src,
		LinkedPurchaseID: linked,
		Observations:     obs,
	}
}

// normalizeObservations NFC y sin espacios en los extremos; largo máximo en runas.
func normalizeObservations(s string) (string, error) {
	s = strings.TrimSpace(norm.NFC.String(s))
	if utf8.RuneCountInString(s) > MaxObservationsLen {
		return "", fmt.Errorf("%w: observaciones de más de %d caracteres", domain.ErrValidation, MaxObservationsLen)
	}
	return s, nil
}
