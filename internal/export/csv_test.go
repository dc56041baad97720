package export

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cauiki/casa-ink-financeiro/internal/model"
)

func TestWrite(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	assert.NoError(t, err)

	txs := []model.Transaction{
		{
			ClientName:    "Ana",
			Artist:        "Jhully",
			Service:       "Tatuagem",
			PaymentMethod: "Pix",
			Value:         decimal.New(150000, -2),
			Obs:           "fechou; em 10x\nligar depois",
			CreatedAt:     time.Date(2026, 8, 30, 17, 45, 10, 0, time.UTC),
		},
		{
			ClientName:    "Bruno",
			Artist:        "Lih",
			Service:       "Piercing",
			PaymentMethod: "Dinheiro",
			Value:         decimal.New(8050, -2),
			CreatedAt:     time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
	}

	var sb strings.Builder
	assert.NoError(t, Write(&sb, txs, loc))
	out := sb.String()

	assert.True(t, strings.HasPrefix(out, "\uFEFF"), "must start with a BOM")
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, "\uFEFF"), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Data;Hora;Cliente;Artista;Serviço;Pagamento;Valor;Obs", lines[0])
	// 17:45 UTC is 14:45 in São Paulo; obs sanitized to keep the row intact
	assert.Equal(t, "30/08/2026;14:45:10;Ana;Jhully;Tatuagem;Pix;1.500,00;fechou, em 10x ligar depois", lines[1])
	assert.Equal(t, "30/08/2026;09:00:00;Bruno;Lih;Piercing;Dinheiro;80,50;", lines[2])
}

func TestWrite_Empty(t *testing.T) {
	var sb strings.Builder
	assert.NoError(t, Write(&sb, nil, time.UTC))
	assert.Equal(t, "\uFEFFData;Hora;Cliente;Artista;Serviço;Pagamento;Valor;Obs\n", sb.String())
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "CAIXA_CASA_INK_30-08-2026.csv", Filename(now))
}
