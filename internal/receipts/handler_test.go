package receipts

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newBareHandler() *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, nil, nil, nil, nil, nil)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestStatusActionRejectsBadIDAsProblemJSON(t *testing.T) {
	h := newBareHandler()

	req := httptest.NewRequest(http.MethodPost, "/admin/pagos/abc/pagado", nil)
	req = withURLParam(req, "id", "abc")
	req.Header.Set("Accept", "application/json")

	res := httptest.NewRecorder()
	h.MarkPaid(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "application/json", res.Header().Get("Content-Type"))
	require.Contains(t, res.Body.String(), "Solicitud inválida")
	require.Contains(t, res.Body.String(), "Recibo inválido")
}

func TestStatusActionRejectsBadIDAsPlainText(t *testing.T) {
	h := newBareHandler()

	req := httptest.NewRequest(http.MethodPost, "/admin/pagos/abc/eliminar", nil)
	req = withURLParam(req, "id", "abc")

	res := httptest.NewRecorder()
	h.Delete(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "Recibo inválido")
}
