package lookup

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildWhatsAppURL constructs a wa.me deep link for a resident to coordinate
// a payment with the community administrator. No API call is made; the link
// is plain navigation.
func BuildWhatsAppURL(contactNumber, ownerName, lotCode string, debt float64, pendingMonths int) string {
	if contactNumber == "" {
		return ""
	}
	months := "meses pendientes"
	if pendingMonths == 1 {
		months = "mes pendiente"
	}
	text := fmt.Sprintf(
		"Hola, soy %s del lote %s. Quiero coordinar el pago de mi deuda de luz de S/ %.2f (%d %s).",
		ownerName, lotCode, debt, pendingMonths, months,
	)
	return "https://wa.me/" + strings.TrimPrefix(contactNumber, "+") +
		"?text=" + url.QueryEscape(text)
}
