package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"rentool-backend/internal/domain"
	"rentool-backend/internal/service"

	"github.com/gorilla/mux"
)

// listPageSize is the fixed page size of the rental list endpoint.
const listPageSize = 25

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

type lineRequest struct {
	ToolID   *int32 `json:"tool_id"`
	Quantity *int32 `json:"quantity"`
}

type createRentalRequest struct {
	CustomerID *int32        `json:"customer_id"`
	EndDate    string        `json:"end_date"`
	Lines      []lineRequest `json:"lines"`
}

type updateRentalRequest struct {
	EndDate string        `json:"end_date"`
	Lines   []lineRequest `json:"lines"`
}

// parseID rejects non-numeric path ids outright instead of defaulting
// them.
func parseID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return int32(id), nil
}

func parseDate(field, raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.NewValidationError(field, "must be an RFC 3339 timestamp or yyyy-mm-dd date")
}

func validateLines(reqs []lineRequest) ([]domain.LineRequest, *domain.ValidationError) {
	fields := map[string][]string{}
	lines := make([]domain.LineRequest, 0, len(reqs))
	for _, l := range reqs {
		if l.ToolID == nil || *l.ToolID < 1 {
			fields["lines.tool_id"] = append(fields["lines.tool_id"], "must be a positive integer")
			continue
		}
		if l.Quantity == nil || *l.Quantity < 1 {
			fields["lines.quantity"] = append(fields["lines.quantity"], "must be a positive integer")
			continue
		}
		lines = append(lines, domain.LineRequest{ToolID: *l.ToolID, Quantity: *l.Quantity})
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}
	return lines, nil
}

// Create handles POST /rentals.
func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string][]string{"body": {"malformed JSON"}})
		return
	}
	if req.CustomerID == nil || *req.CustomerID < 1 {
		writeValidationError(w, map[string][]string{"customer_id": {"must be a positive integer"}})
		return
	}
	endDate, err := parseDate("end_date", req.EndDate)
	if err != nil {
		writeError(w, "create", 0, err)
		return
	}
	lines, vErr := validateLines(req.Lines)
	if vErr != nil {
		writeValidationError(w, vErr.Fields)
		return
	}

	rental, err := h.rentalSvc.CreateRental(r.Context(), *req.CustomerID, endDate, lines)
	if err != nil {
		writeError(w, "create", 0, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Rental created", rental)
}

// Update handles PUT and PATCH /rentals/{rentalId}.
func (h *RentalHandler) Update(w http.ResponseWriter, r *http.Request) {
	rentalID, err := parseID(r, "rentalId")
	if err != nil {
		writeError(w, "update", 0, err)
		return
	}

	var req updateRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, map[string][]string{"body": {"malformed JSON"}})
		return
	}

	var newEndDate *time.Time
	if req.EndDate != "" {
		parsed, err := parseDate("end_date", req.EndDate)
		if err != nil {
			writeError(w, "update", rentalID, err)
			return
		}
		newEndDate = &parsed
	}
	lines, vErr := validateLines(req.Lines)
	if vErr != nil {
		writeValidationError(w, vErr.Fields)
		return
	}

	rental, err := h.rentalSvc.UpdateRental(r.Context(), rentalID, newEndDate, lines)
	if err != nil {
		writeError(w, "update", rentalID, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Rental updated", rental)
}

// Cancel handles DELETE /rentals/{rentalId}, restoring stock.
func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	rentalID, err := parseID(r, "rentalId")
	if err != nil {
		writeError(w, "cancel", 0, err)
		return
	}
	if err := h.rentalSvc.CancelRental(r.Context(), rentalID); err != nil {
		writeError(w, "cancel", rentalID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ForceCancel handles DELETE /rentals/{rentalId}/force, leaving stock
// untouched.
func (h *RentalHandler) ForceCancel(w http.ResponseWriter, r *http.Request) {
	rentalID, err := parseID(r, "rentalId")
	if err != nil {
		writeError(w, "force-cancel", 0, err)
		return
	}
	if err := h.rentalSvc.ForceCancelRental(r.Context(), rentalID); err != nil {
		writeError(w, "force-cancel", rentalID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Settle handles POST /rentals/{rentalId}/settle.
func (h *RentalHandler) Settle(w http.ResponseWriter, r *http.Request) {
	rentalID, err := parseID(r, "rentalId")
	if err != nil {
		writeError(w, "settle", 0, err)
		return
	}
	rental, err := h.rentalSvc.SettleRental(r.Context(), rentalID)
	if err != nil {
		writeError(w, "settle", rentalID, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Rental settled", rental)
}

// Get handles GET /rentals/{rentalId}.
func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	rentalID, err := parseID(r, "rentalId")
	if err != nil {
		writeError(w, "get", 0, err)
		return
	}
	rental, err := h.rentalSvc.GetRental(r.Context(), rentalID)
	if err != nil {
		writeError(w, "get", rentalID, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Rental found", rental)
}

// List handles GET /rentals with filters and fixed-size pagination.
func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRentalFilter(r)
	if err != nil {
		writeError(w, "list", 0, err)
		return
	}

	rentals, matchData, err := h.rentalSvc.ListRentals(r.Context(), filter)
	if err != nil {
		writeError(w, "list", 0, err)
		return
	}
	writeList(w, "Rentals found", rentals,
		newPagination(len(rentals), matchData, filter.PageSize, filter.Page))
}

func parseRentalFilter(r *http.Request) (domain.RentalFilter, error) {
	q := r.URL.Query()
	filter := domain.RentalFilter{
		Search:   q["search"],
		Page:     1,
		PageSize: listPageSize,
	}

	fields := map[string][]string{}

	intParam := func(name string) *int64 {
		raw := q.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fields[name] = append(fields[name], "must be an integer")
			return nil
		}
		return &v
	}
	dateParam := func(name string) *time.Time {
		raw := q.Get(name)
		if raw == "" {
			return nil
		}
		t, err := parseDate(name, raw)
		if err != nil {
			fields[name] = append(fields[name], "must be an RFC 3339 timestamp or yyyy-mm-dd date")
			return nil
		}
		return &t
	}

	if page := intParam("page"); page != nil {
		if *page < 1 {
			fields["page"] = append(fields["page"], "must be a positive integer")
		} else {
			filter.Page = int32(*page)
		}
	}
	filter.MinTotalCents = intParam("min_total")
	filter.MaxTotalCents = intParam("max_total")
	filter.MinStartDate = dateParam("min_start")
	filter.MaxStartDate = dateParam("max_start")
	filter.MinEndDate = dateParam("min_end")
	filter.MaxEndDate = dateParam("max_end")

	if raw := q.Get("payment_status"); raw != "" {
		switch status := domain.PaymentStatus(raw); status {
		case domain.PaymentStatusUnpaid, domain.PaymentStatusPaid:
			filter.PaymentStatus = status
		default:
			fields["payment_status"] = append(fields["payment_status"], "must be UNPAID or PAID")
		}
	}
	if raw := q.Get("return_status"); raw != "" {
		switch status := domain.ReturnStatus(raw); status {
		case domain.ReturnStatusNotReturned, domain.ReturnStatusReturned:
			filter.ReturnStatus = status
		default:
			fields["return_status"] = append(fields["return_status"], "must be NOT_RETURNED or RETURNED")
		}
	}

	if len(fields) > 0 {
		return domain.RentalFilter{}, &domain.ValidationError{Fields: fields}
	}
	return filter, nil
}
