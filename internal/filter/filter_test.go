package filter

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpgomezm1/producto-comprobantes-sub000/internal/models"
)

func comp(banco, fecha, beneficiario string, valor int64, valido bool) models.Comprobante {
	return models.Comprobante{
		ID:                 uuid.New(),
		BancoEmisor:        banco,
		Fecha:              fecha,
		NombreBeneficiario: beneficiario,
		ValorTransferencia: decimal.NewFromInt(valor),
		EsValido:           valido,
	}
}

func TestApplyEmptyStateReturnsEverything(t *testing.T) {
	list := []models.Comprobante{
		comp("Nequi", "2024-01-05", "Juan", 1000, true),
		comp("BBVA", "2024-01-10", "Maria", 2000, false),
	}

	out := Apply(list, State{Status: StatusAll}, nil)
	assert.Len(t, out, len(list))
}

func TestApplyIsIdempotentAndNeverMutates(t *testing.T) {
	list := []models.Comprobante{
		comp("Nequi", "2024-01-05", "Juan", 1000, true),
		comp("BBVA", "2024-01-10", "Maria", 2000, false),
		comp("Bancolombia", "2024-02-01", "Pedro", 3000, true),
	}
	st := State{Status: StatusValid, SearchTerm: ""}

	first := Apply(list, st, nil)
	second := Apply(first, st, nil)

	assert.Equal(t, first, second)
	assert.Len(t, list, 3, "input slice must not shrink")
	for _, c := range first {
		assert.Contains(t, ids(list), c.ID, "filtered output must be a subset of the input")
	}
}

func mustRange(t *testing.T, from, to string) DateRange {
	t.Helper()
	f, err := time.Parse("2006-01-02", from)
	require.NoError(t, err)
	r := DateRange{From: f}
	if to != "" {
		tt, err := time.Parse("2006-01-02", to)
		require.NoError(t, err)
		r.To = tt
	}
	return r
}

func ids(list []models.Comprobante) []uuid.UUID {
	out := make([]uuid.UUID, len(list))
	for i := range list {
		out[i] = list[i].ID
	}
	return out
}

func TestApplyStatusValidScenario(t *testing.T) {
	// three receipts: 2024-01-05/1000/valid, 2024-01-10/2000/invalid, 2024-02-01/3000/valid
	list := []models.Comprobante{
		comp("Nequi", "2024-01-05", "Juan", 1000, true),
		comp("BBVA", "2024-01-10", "Maria", 2000, false),
		comp("Nequi", "2024-02-01", "Pedro", 3000, true),
	}

	out := Apply(list, State{Status: StatusValid}, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "2024-01-05", out[0].Fecha)
	assert.Equal(t, "2024-02-01", out[1].Fecha)

	stats := Compute(out)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Validos)
	assert.True(t, stats.MontoValido.Equal(decimal.NewFromInt(4000)), "got %s", stats.MontoValido)
	assert.Equal(t, "Nequi", stats.BancoMasUsado)
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	list := []models.Comprobante{
		comp("Nequi", "2024-01-05", "Juan", 1000, true),
		comp("BBVA", "2024-01-10", "Maria", 2000, false),
	}

	out := Apply(list, State{Status: StatusAll, SearchTerm: "nequi"}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Nequi", out[0].BancoEmisor)

	// matches numero/referencia too
	withRef := comp("Davivienda", "2024-01-11", "Ana", 500, true)
	withRef.NumeroReferencia = "REF-778899"
	out = Apply(append(list, withRef), State{Status: StatusAll, SearchTerm: "7788"}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Davivienda", out[0].BancoEmisor)
}

func TestDateRangeIsInclusiveByCalendarDay(t *testing.T) {
	list := []models.Comprobante{
		comp("Nequi", "2024-01-05", "Juan", 1000, true),
		comp("BBVA", "2024-01-10", "Maria", 2000, false),
		comp("Nequi", "2024-02-01", "Pedro", 3000, true),
	}

	r := mustRange(t, "2024-01-05", "2024-01-10")
	out := Apply(list, State{Status: StatusAll, Range: &r}, nil)
	assert.Len(t, out, 2)

	// missing To means the single day From
	single := mustRange(t, "2024-01-10", "")
	out = Apply(list, State{Status: StatusAll, Range: &single}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "2024-01-10", out[0].Fecha)
}

func TestUnparseableDateIsExcludedWithoutPanic(t *testing.T) {
	list := []models.Comprobante{
		comp("Nequi", "2024-01-05", "Juan", 1000, true),
		comp("BBVA", "no-es-fecha", "Maria", 2000, true),
	}

	r := mustRange(t, "2024-01-01", "2024-12-31")
	out := Apply(list, State{Status: StatusAll, Range: &r}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Nequi", out[0].BancoEmisor)
}

func TestComputeEmptySetUsesSentinel(t *testing.T) {
	stats := Compute(nil)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.Validos)
	assert.Equal(t, 0, stats.Invalidos)
	assert.True(t, stats.MontoValido.IsZero())
	assert.Equal(t, BancoNA, stats.BancoMasUsado)
}

func TestComputeInvalidNeverContributesToTotal(t *testing.T) {
	stats := Compute([]models.Comprobante{
		comp("Nequi", "2024-01-05", "Juan", 1000, true),
		comp("BBVA", "2024-01-10", "Maria", 99999, false),
	})
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Validos)
	assert.Equal(t, 1, stats.Invalidos)
	assert.True(t, stats.MontoValido.Equal(decimal.NewFromInt(1000)))
}

func TestMostUsedBankTieBreaksToFirstEncountered(t *testing.T) {
	stats := Compute([]models.Comprobante{
		comp("Bancolombia", "2024-01-01", "A", 1, true),
		comp("Nequi", "2024-01-02", "B", 1, true),
		comp("Nequi", "2024-01-03", "C", 1, true),
		comp("Bancolombia", "2024-01-04", "D", 1, true),
	})
	assert.Equal(t, "Bancolombia", stats.BancoMasUsado)
}
