// rebuild recalcula el stock materializado desde el libro de movimientos.
//
// Uso:
//
//	go run ./cmd/rebuild --all
//	go run ./cmd/rebuild --warehouse <uuid> --kind product --item <uuid> [--repair]
//
// Sale con código 2 si alguna clave no coincide con el libro (la clave queda detenida).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/jhoicas/stock-ledger/internal/app"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	var (
		all       = pflag.Bool("all", false, "reconstruir todas las claves")
		warehouse = pflag.String("warehouse", "", "id de la bodega")
		kind      = pflag.String("kind", string(entity.ItemKindProduct), "product | resource")
		item      = pflag.String("item", "", "id del ítem")
		repair    = pflag.Bool("repair", false, "sobrescribir el agregado con la suma del libro y levantar la detención")
	)
	pflag.Parse()

	if *all == (*warehouse != "") || (*repair && *all) {
		fmt.Fprintln(os.Stderr, "use --all, o --warehouse/--kind/--item (con --repair opcional)")
		pflag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "rebuild"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Build(ctx, cfg, log, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar motor")
	}
	defer rt.Close()

	var reports []*inventory.RebuildReport
	switch {
	case *all:
		reports, err = rt.Engine.Stock.RebuildAll(ctx)
	default:
		key := entity.StockKey{WarehouseID: *warehouse, Item: entity.ItemRef{Kind: entity.ItemKind(*kind), ID: *item}}
		var r *inventory.RebuildReport
		if *repair {
			r, err = rt.Engine.Stock.Repair(ctx, key)
		} else {
			r, err = rt.Engine.Stock.Rebuild(ctx, key)
		}
		if r != nil {
			reports = append(reports, r)
		}
		if errors.Is(err, domain.ErrLedgerCorruption) {
			err = nil
		}
	}
	if err != nil {
		rt.Close()
		log.Fatal().Err(err).Msg("reconstrucción")
	}

	if printReports(reports) > 0 {
		rt.Close()
		os.Exit(2)
	}
}

// printReports imprime la tabla y devuelve cuántas claves no coinciden o siguen detenidas.
func printReports(reports []*inventory.RebuildReport) int {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLAVE\tALMACENADO\tLIBRO\tESTADO")
	bad := 0
	for _, r := range reports {
		state := "ok"
		switch {
		case r.Repaired:
			state = "reparada"
		case !r.Consistent:
			state = "CORRUPTA (detenida)"
			bad++
		case r.WasHalted:
			state = "detenida"
			bad++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Key, r.Stored, r.Derived, state)
	}
	_ = w.Flush()
	return bad
}
