package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
	"github.com/OSH212/phmarcel-rpg/internal/infrastructure/report"
)

type openIntakeRequest struct {
	ClientID   string `json:"client_id"`
	FiscalYear int    `json:"fiscal_year"`
}

type openIntakeResponse struct {
	Intake    *domain.Intake         `json:"intake"`
	Checklist []domain.ChecklistItem `json:"checklist"`
}

func (rt *Router) openIntake(w http.ResponseWriter, r *http.Request) {
	var req openIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	intake, items, err := rt.intakes.Open(r.Context(), req.ClientID, req.FiscalYear)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, openIntakeResponse{Intake: intake, Checklist: items})
}

func (rt *Router) getIntake(w http.ResponseWriter, r *http.Request) {
	intake, err := rt.intakes.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intake)
}

func (rt *Router) classifyIntake(w http.ResponseWriter, r *http.Request) {
	results, err := rt.processor.ClassifyIntake(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_classified": len(results),
		"results":          results,
	})
}

func (rt *Router) extractIntake(w http.ResponseWriter, r *http.Request) {
	results, err := rt.processor.ExtractIntake(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_extracted": len(results),
		"results":         results,
	})
}

func (rt *Router) getChecklist(w http.ResponseWriter, r *http.Request) {
	view, err := rt.checklist.View(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) exportChecklist(w http.ResponseWriter, r *http.Request) {
	intakeID := r.PathValue("id")
	view, err := rt.checklist.View(r.Context(), intakeID)
	if err != nil {
		writeError(w, err)
		return
	}

	workbook, err := report.ChecklistWorkbook(view)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "checklist-"+intakeID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}
