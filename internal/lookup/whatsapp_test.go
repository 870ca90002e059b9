package lookup

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildWhatsAppURL(t *testing.T) {
	link := BuildWhatsAppURL("51921248292", "MARIA QUISPE", "MZ A - LT 1", 100.30, 2)

	require.True(t, strings.HasPrefix(link, "https://wa.me/51921248292?text="))

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	text := parsed.Query().Get("text")
	require.Contains(t, text, "MARIA QUISPE")
	require.Contains(t, text, "MZ A - LT 1")
	require.Contains(t, text, "S/ 100.30")
	require.Contains(t, text, "2 meses")
}

func TestBuildWhatsAppURLSingularMonth(t *testing.T) {
	link := BuildWhatsAppURL("51921248292", "JORGE", "MZ B - LT 3", 55.00, 1)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	require.Contains(t, parsed.Query().Get("text"), "1 mes pendiente")
}

func TestBuildWhatsAppURLStripsPlus(t *testing.T) {
	link := BuildWhatsAppURL("+51921248292", "ROSA", "MZ C - LT 2", 10, 1)
	require.True(t, strings.HasPrefix(link, "https://wa.me/51921248292?"))
}

func TestBuildWhatsAppURLNoContact(t *testing.T) {
	require.Empty(t, BuildWhatsAppURL("", "ROSA", "MZ C - LT 2", 10, 1))
}
