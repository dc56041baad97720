// Package export renders the in-memory transaction list as the
// semicolon-delimited spreadsheet the studio imports into its bookkeeping.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cauiki/casa-ink-financeiro/internal/currency"
	"github.com/cauiki/casa-ink-financeiro/internal/model"
)

const header = "Data;Hora;Cliente;Artista;Serviço;Pagamento;Valor;Obs"

// bom keeps Excel from mangling the accented headers.
const bom = "\uFEFF"

// Write renders txs in the order given, one row per transaction, dates and
// amounts in pt-BR format.
func Write(w io.Writer, txs []model.Transaction, loc *time.Location) error {
	var b strings.Builder
	b.WriteString(bom)
	b.WriteString(header)
	b.WriteByte('\n')
	for _, t := range txs {
		at := t.CreatedAt.In(loc)
		fmt.Fprintf(&b, "%s;%s;%s;%s;%s;%s;%s;%s\n",
			at.Format("02/01/2006"),
			at.Format("15:04:05"),
			sanitize(t.ClientName),
			sanitize(t.Artist),
			sanitize(t.Service),
			sanitize(t.PaymentMethod),
			currency.FormatAmount(t.Value),
			sanitize(t.Obs),
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Filename names the download after the export date, e.g.
// CAIXA_CASA_INK_30-08-2026.csv.
func Filename(now time.Time) string {
	return "CAIXA_CASA_INK_" + now.Format("02-01-2006") + ".csv"
}

// sanitize keeps free text from breaking the row structure.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, ";", ",")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", "")
}
