package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/worktrack-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/worktrack-hq/attendance-backend-go/internal/domain/roster"
	"github.com/worktrack-hq/attendance-backend-go/internal/handler/http/response"
	"github.com/worktrack-hq/attendance-backend-go/internal/pkg/validator"
)

type RosterHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Regularize(w http.ResponseWriter, r *http.Request)
}

type rosterHandlerImpl struct {
	rosterService     roster.RosterService
	attendanceService attendance.AttendanceService
}

func NewRosterHandler(rosterService roster.RosterService, attendanceService attendance.AttendanceService) RosterHandler {
	return &rosterHandlerImpl{
		rosterService:     rosterService,
		attendanceService: attendanceService,
	}
}

// List implements RosterHandler. Without person_ids the roster covers
// everyone reporting to the authenticated supervisor.
func (h *rosterHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := roster.PageRequest{
		SupervisorID: personIDFromRequest(r),
	}

	if raw := r.URL.Query().Get("person_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id == "" {
				continue
			}
			if !validator.IsValidUUID(id) {
				response.BadRequest(w, "person_ids must be valid UUIDs", map[string]string{
					"person_ids": id,
				})
				return
			}
			req.PersonIDs = append(req.PersonIDs, id)
		}
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid page parameter", nil)
			return
		}
		req.PageIndex = page
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid page_size parameter", nil)
			return
		}
		req.PageSize = size
	}

	page, err := h.rosterService.FetchRosterPage(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, page.Records, &response.Meta{
		PageIndex:  page.PageIndex,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		TotalPages: page.TotalPages,
	})
}

// Regularize implements RosterHandler.
func (h *rosterHandlerImpl) Regularize(w http.ResponseWriter, r *http.Request) {
	var req attendance.RegularizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ApproverID = personIDFromRequest(r)

	result, err := h.attendanceService.Regularize(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance regularized", result)
}
