package http

import (
	"errors"
	"net/http"

	apierrors "github.com/hdmquan/logos-living-capital/internal/errors"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
	"github.com/hdmquan/logos-living-capital/internal/files"
	"github.com/hdmquan/logos-living-capital/internal/operations"
	"github.com/hdmquan/logos-living-capital/internal/services"
)

// mapError translates service and storage errors into API errors. Errors it
// does not recognise pass through for the error handler to classify.
func mapError(err error) error {
	var opErr *operations.OperationError
	var tooLarge *http.MaxBytesError

	switch {
	case err == nil:
		return nil
	case errors.Is(err, files.ErrInvalidRunID):
		return apierrors.ErrValidation("runID", err.Error())
	case errors.Is(err, files.ErrInvalidName), errors.Is(err, services.ErrNotWorkbook):
		return apierrors.ErrValidation("file", err.Error())
	case errors.Is(err, files.ErrRunNotFound):
		return apierrors.ErrRunNotFound
	case errors.Is(err, files.ErrRunExists):
		return apierrors.New(http.StatusConflict, "RUN_EXISTS", "A run with this id already exists, retry in a second")
	case errors.Is(err, services.ErrRunNotProcessed):
		return apierrors.ErrRunNotProcessed
	case errors.Is(err, exporter.ErrTableNotFound):
		return apierrors.ErrTableNotFound
	case errors.Is(err, services.ErrNoVariance):
		return apierrors.NotFoundError("variance")
	case errors.Is(err, services.ErrReportNotFound):
		return apierrors.NotFoundError("report")
	case errors.As(err, &tooLarge):
		return apierrors.ErrPayloadTooLarge
	case errors.As(err, &opErr) && opErr.Type == operations.ErrorTypeWorkbook:
		return apierrors.NewWithDetails(http.StatusUnprocessableEntity, "UNPROCESSABLE_WORKBOOK",
			apierrors.ErrUnprocessableWorkbook.Message, opErr.Error())
	}
	return err
}
