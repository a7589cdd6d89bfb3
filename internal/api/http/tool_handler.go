package http

import (
	"net/http"
	"strconv"

	"rentool-backend/internal/service"
)

type ToolHandler struct {
	toolSvc service.ToolService
}

func NewToolHandler(toolSvc service.ToolService) *ToolHandler {
	return &ToolHandler{toolSvc: toolSvc}
}

// Get handles GET /tools/{toolId}.
func (h *ToolHandler) Get(w http.ResponseWriter, r *http.Request) {
	toolID, err := parseID(r, "toolId")
	if err != nil {
		writeError(w, "get-tool", 0, err)
		return
	}
	tool, err := h.toolSvc.GetTool(r.Context(), toolID)
	if err != nil {
		writeError(w, "get-tool", 0, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Tool found", tool)
}

// List handles GET /tools.
func (h *ToolHandler) List(w http.ResponseWriter, r *http.Request) {
	page := int32(1)
	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || v < 1 {
			writeValidationError(w, map[string][]string{"page": {"must be a positive integer"}})
			return
		}
		page = int32(v)
	}

	tools, matchData, err := h.toolSvc.ListTools(r.Context(), page, listPageSize)
	if err != nil {
		writeError(w, "list-tools", 0, err)
		return
	}
	writeList(w, "Tools found", tools, newPagination(len(tools), matchData, listPageSize, page))
}
