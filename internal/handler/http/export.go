package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/assistenzwerk/timesheet-backend-go/internal/handler/http/response"
	"github.com/assistenzwerk/timesheet-backend-go/internal/service/export"
)

type ExportHandler interface {
	TimesheetWorkbook(w http.ResponseWriter, r *http.Request)
}

type ExportHandlerImpl struct {
	exportService *export.ExportService
}

func NewExportHandler(exportService *export.ExportService) ExportHandler {
	return &ExportHandlerImpl{exportService: exportService}
}

// TimesheetWorkbook streams the monthly xlsx workbook for one sheet
// grouping. Admin only.
func (h *ExportHandlerImpl) TimesheetWorkbook(w http.ResponseWriter, r *http.Request) {
	sheetFileName := r.URL.Query().Get("sheetFileName")
	if sheetFileName == "" {
		response.BadRequest(w, "sheetFileName is required", nil)
		return
	}

	month, year, ok := periodFromQuery(w, r)
	if !ok {
		return
	}

	// ?archive=true keeps a copy in file storage instead of streaming.
	if r.URL.Query().Get("archive") == "true" {
		url, err := h.exportService.ArchiveWorkbook(r.Context(), sheetFileName, month, year)
		if err != nil {
			slog.Error("Export archive error", "sheet", sheetFileName, "error", err)
			response.HandleError(w, err)
			return
		}
		response.Success(w, map[string]string{"url": url})
		return
	}

	workbook, err := h.exportService.TimesheetWorkbook(r.Context(), sheetFileName, month, year)
	if err != nil {
		slog.Error("Export workbook error", "sheet", sheetFileName, "error", err)
		response.HandleError(w, err)
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("%s_%02d_%d.xlsx", sheetFileName, month, year)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := workbook.Write(w); err != nil {
		slog.Error("Export workbook write error", "sheet", sheetFileName, "error", err)
	}
}
