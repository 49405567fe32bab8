package controllers

import (
	"net/http"

	"github.com/springzlabs/springz-backend/api/responses"
	analyticssvc "github.com/springzlabs/springz-backend/internal/analytics"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
	"github.com/springzlabs/springz-backend/pkg/logger"
)

// AdminDashboard returns the back-office overview metrics.
func AdminDashboard(svc analyticssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		dashboard, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboard)
	}
}
