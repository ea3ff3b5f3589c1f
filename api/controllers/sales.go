package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/baxeinwear/storefront-backend/api/responses"
	"github.com/baxeinwear/storefront-backend/api/validators"
	"github.com/baxeinwear/storefront-backend/internal/sales"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
)

const (
	formatJSON = "json"
	formatXLSX = "xlsx"
)

// SalesHistory aggregates the merchant's sales per product. ?formato=xlsx
// returns the same report as a spreadsheet download.
func SalesHistory(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("sales"))
			return
		}

		query := r.URL.Query()
		format := strings.ToLower(validators.SanitizeString(query.Get("formato"), 8))
		if format == "" {
			format = formatJSON
		}
		if format != formatJSON && format != formatXLSX {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "formato must be one of: json xlsx"))
			return
		}

		userID, err := queryUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseQueryUUID(r, "categoriaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		window, err := sales.ParseDateRange(query.Get("dataInicio"), query.Get("dataFim"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), sales.HistoryQuery{
			UserID:     userID,
			CategoryID: categoryID,
			Range:      window,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if format == formatJSON {
			responses.WriteSuccess(w, "Histórico de vendas carregado", history)
			return
		}

		var buf bytes.Buffer
		if err := sales.WriteXLSX(&buf, history); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render sales spreadsheet"))
			return
		}
		filename := fmt.Sprintf("vendas-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
		w.Header().Set("Content-Type", sales.XLSXContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
