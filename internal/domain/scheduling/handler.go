package scheduling

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	read.GET("/appointments", h.SearchAppointments)
	read.GET("/appointments/:id", h.GetAppointment)
	read.GET("/patients/:id/appointments", h.GetPatientAppointments)
	read.GET("/physicians/:id/schedule", h.GetDailySchedule)
	read.GET("/physicians/:id/schedule/range", h.GetScheduleInRange)
	read.GET("/physicians/:id/slots", h.GetAvailableSlots)
	read.GET("/physicians/:id/slots/next", h.GetNextAvailableSlot)
	read.GET("/physicians/:id/statistics", h.GetStatistics)

	write := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	write.POST("/appointments", h.BookAppointment)
	write.PUT("/appointments/:id/reschedule", h.RescheduleAppointment)
	write.PATCH("/appointments/:id/cancel", h.CancelAppointment)
	write.PATCH("/appointments/:id/complete", h.CompleteAppointment)
	write.PATCH("/appointments/:id/no-show", h.MarkNoShow)
	write.POST("/appointments/:id/document", h.AttachDocument)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.DELETE("/appointments/:id", h.DeleteAppointment)
	admin.POST("/unavailable-blocks", h.AddUnavailableBlock)
}

// -- Request/response shapes --

type bookRequest struct {
	PatientID      uuid.UUID `json:"patient_id"`
	PhysicianID    uuid.UUID `json:"physician_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Type           string    `json:"type"`
	ReasonForVisit string    `json:"reason_for_visit"`
	Notes          string    `json:"notes"`
	RoomNumber     string    `json:"room_number"`
}

type rescheduleRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type attachDocumentRequest struct {
	DocumentID uuid.UUID `json:"document_id"`
}

type blockRequest struct {
	PhysicianID *uuid.UUID           `json:"physician_id"`
	Start       time.Time            `json:"start"`
	End         time.Time            `json:"end"`
	Reason      UnavailabilityReason `json:"reason"`
	Description string               `json:"description"`
}

// -- Handlers --

func (h *Handler) BookAppointment(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.Book(c.Request().Context(), BookingRequest{
		PatientID:      req.PatientID,
		PhysicianID:    req.PhysicianID,
		Start:          req.Start,
		End:            req.End,
		Type:           req.Type,
		ReasonForVisit: req.ReasonForVisit,
		Notes:          req.Notes,
		RoomNumber:     req.RoomNumber,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !result.Success {
		// Conflicts are a valid outcome, not an error.
		return c.JSON(http.StatusConflict, result)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt := h.svc.GetAppointment(c.Request().Context(), id)
	if appt == nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) SearchAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)

	var q AppointmentSearch
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		q.PatientID = id
	}
	if v := c.QueryParam("physician_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid physician_id")
		}
		q.PhysicianID = id
	}
	if v := c.QueryParam("status"); v != "" {
		q.Status = AppointmentStatus(v)
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from")
		}
		q.From = t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to")
		}
		q.To = t
	}

	appts, err := h.svc.SearchAppointments(c.Request().Context(), q)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	total := len(appts)
	start := pg.Offset
	if start > total {
		start = total
	}
	end := start + pg.Limit
	if end > total {
		end = total
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts[start:end], total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPatientAppointments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appts := h.svc.PatientAppointments(c.Request().Context(), id)
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) RescheduleAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt := h.svc.GetAppointment(c.Request().Context(), id)
	if appt == nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	result, err := h.svc.Reschedule(c.Request().Context(), appt.PhysicianID, id, req.Start, req.End)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !result.Success {
		return c.JSON(http.StatusConflict, result)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt := h.svc.GetAppointment(c.Request().Context(), id)
	if appt == nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err := h.svc.Cancel(c.Request().Context(), appt.PhysicianID, id, req.Reason); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CompleteAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Complete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkNoShow(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.MarkNoShow(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AttachDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req attachDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DocumentID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "document_id is required")
	}
	if err := h.svc.AttachDocument(c.Request().Context(), id, req.DocumentID); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	appt := h.svc.GetAppointment(c.Request().Context(), id)
	if appt == nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err := h.svc.Delete(c.Request().Context(), appt.PhysicianID, id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetDailySchedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
	}
	return c.JSON(http.StatusOK, h.svc.DailySchedule(c.Request().Context(), id, date))
}

func (h *Handler) GetScheduleInRange(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	from, err := time.Parse(time.RFC3339, c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from")
	}
	to, err := time.Parse(time.RFC3339, c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to")
	}
	return c.JSON(http.StatusOK, h.svc.ScheduleInRange(c.Request().Context(), id, from, to))
}

func (h *Handler) GetAvailableSlots(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
	}
	duration, err := parseDuration(c.QueryParam("duration"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid duration")
	}
	slots, err := h.svc.AvailableSlotsOn(c.Request().Context(), id, date, duration)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) GetNextAvailableSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	duration, err := parseDuration(c.QueryParam("duration"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid duration")
	}
	after := time.Now().UTC()
	if v := c.QueryParam("after"); v != "" {
		after, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid after")
		}
	}
	slot, ok := h.svc.NextAvailableSlot(c.Request().Context(), id, duration, after)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no available slot within the search horizon")
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *Handler) GetStatistics(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	from := time.Time{}
	to := time.Now().UTC().AddDate(1, 0, 0)
	if v := c.QueryParam("from"); v != "" {
		from, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from")
		}
	}
	if v := c.QueryParam("to"); v != "" {
		to, err = time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to")
		}
	}
	return c.JSON(http.StatusOK, h.svc.Statistics(c.Request().Context(), id, from, to))
}

func (h *Handler) AddUnavailableBlock(c echo.Context) error {
	var req blockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	block, err := NewUnavailableBlock(req.PhysicianID, req.Start, req.End, req.Reason, req.Description)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddUnavailableBlock(c.Request().Context(), block); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, block)
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	return time.Parse("2006-01-02", v)
}

func parseDuration(v string) (time.Duration, error) {
	if v == "" {
		return 30 * time.Minute, nil
	}
	return time.ParseDuration(v)
}
