package entity_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestDate_ParseYComparacion(t *testing.T) {
	a, err := entity.ParseDate("2025-03-01")
	require.NoError(t, err)
	b, err := entity.ParseDate("2025-03-02")
	require.NoError(t, err)

	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.Equal(t, "2025-03-01", a.String())

	_, err = entity.ParseDate("01/03/2025")
	assert.Error(t, err)
}

func TestDate_DateOfUsaLaZonaDelInstante(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	instant := time.Date(2025, 3, 2, 3, 0, 0, 0, time.UTC) // 1 de marzo 22:00 en Bogotá

	assert.Equal(t, entity.Date{Year: 2025, Month: time.March, Day: 2}, entity.DateOf(instant))
	assert.Equal(t, entity.Date{Year: 2025, Month: time.March, Day: 1}, entity.DateOf(instant.In(bogota)))
}

func TestDate_JSONVacioEsCero(t *testing.T) {
	var out struct {
		D entity.Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":""}`), &out))
	assert.True(t, out.D.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-12-31"}`), &out))
	assert.Equal(t, entity.Date{Year: 2024, Month: time.December, Day: 31}, out.D)

	assert.Error(t, json.Unmarshal([]byte(`{"d":"mañana"}`), &out))
}

func TestItemRef_Validacion(t *testing.T) {
	_, err := entity.NewItemRef("product", "22222222-2222-2222-2222-222222222222")
	assert.NoError(t, err)
	_, err = entity.NewItemRef("service", "22222222-2222-2222-2222-222222222222")
	assert.Error(t, err)
	_, err = entity.NewItemRef("resource", "no-uuid")
	assert.Error(t, err)
}

func TestStockKey_ProductoYRecursoSonClavesDistintas(t *testing.T) {
	id := "22222222-2222-2222-2222-222222222222"
	wh := "11111111-1111-1111-1111-111111111111"
	p := entity.StockKey{WarehouseID: wh, Item: entity.ItemRef{Kind: entity.ItemKindProduct, ID: id}}
	r := entity.StockKey{WarehouseID: wh, Item: entity.ItemRef{Kind: entity.ItemKindResource, ID: id}}
	assert.NotEqual(t, p, r)
	assert.NotEqual(t, p.String(), r.String())
}
