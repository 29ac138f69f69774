// README: Plain-text order summary sent to clients by e-mail.
package summary

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"alquipc/internal/modules/pricing"
	"alquipc/internal/types"
)

const (
	header    = "--- Resumen Alquiler ALQUIPC ---"
	separator = "---------------------------------"
	adjusted  = "Descuentos/Incrementos: Aplicados según opción y días adic."
	// Summaries are e-mailed only; there is no print option.
	footer = "(Información generada para envío por email. ALQUIPC apoya el reciclaje de papel.)"
)

var printer = message.NewPrinter(language.English)

// Format renders the summary for req with the computed total.
func Format(req pricing.RentalRequest, total types.Money) string {
	var b strings.Builder
	b.WriteString(header + "\n")
	fmt.Fprintf(&b, "Opción Alquiler: %s\n", req.Mode.Label())
	fmt.Fprintf(&b, "Equipos Alquilados: %d\n", req.EquipmentCount)
	fmt.Fprintf(&b, "Días Iniciales: %d\n", req.InitialDays)
	fmt.Fprintf(&b, "Días Adicionales: %d\n", req.ExtraDays)
	b.WriteString(adjusted + "\n")
	fmt.Fprintf(&b, "VALOR TOTAL A CANCELAR: %s\n", Currency(total))
	b.WriteString(separator + "\n")
	b.WriteString(footer)
	return b.String()
}

// Currency formats m as $1,234,567.89.
func Currency(m types.Money) string {
	negative, whole, cents := m.Split()
	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("$%s%s.%02d", sign, printer.Sprintf("%d", whole), cents)
}
