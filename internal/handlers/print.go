package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/xelth-com/ecktables/internal/services/printer"
	"go.uber.org/zap"
)

// printFloorPlan renders the committed floor plan of a hall as PDF
func (r *Router) printFloorPlan(w http.ResponseWriter, req *http.Request) {
	hall, entities, ok := r.hallEntities(w, req)
	if !ok {
		return
	}

	pdfBytes, err := printer.FloorPlanPDF(entities, printer.FloorPlanConfig{
		Title:  hall.Name,
		Canvas: r.deps.Canvas,
	})
	if err != nil {
		r.log.Error("floor plan pdf failed", zap.String("hall_id", hall.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	// Set headers for download
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"floorplan_%s.pdf\"", hall.ID))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))

	w.Write(pdfBytes)
}
