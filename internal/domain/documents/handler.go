package documents

import (
	"errors"
	"net/http"

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
	read := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	read.GET("/documents", h.List)
	read.GET("/documents/:id", h.Get)
	read.GET("/patients/:id/documents", h.ListByPatient)

	write := api.Group("", auth.RequireRole("admin", "physician"))
	write.POST("/documents", h.Create)
	write.PUT("/documents/:id", h.UpdateContent)
	write.POST("/documents/:id/finalize", h.Finalize)
	write.POST("/documents/:id/amend", h.Amend)
	write.POST("/documents/:id/entered-in-error", h.MarkEnteredInError)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.DELETE("/documents/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateContent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d, err := h.svc.UpdateContent(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		case errors.Is(err, ErrNotDraft):
			return echo.NewHTTPError(http.StatusConflict, "only drafts can be edited; amend the document instead")
		}
		return err
	}
	return c.JSON(http.StatusOK, d)
}

type signRequest struct {
	PhysicianID uuid.UUID `json:"physician_id"`
	Reason      string    `json:"reason"`
}

func (h *Handler) Finalize(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}
	var req signRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PhysicianID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "physician_id is required")
	}
	d, err := h.svc.Finalize(c.Request().Context(), id, req.PhysicianID)
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		case errors.Is(err, ErrNotDraft), errors.Is(err, ErrDocumentRetired):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Amend(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}
	var req signRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PhysicianID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "physician_id is required")
	}
	d, err := h.svc.Amend(c.Request().Context(), id, req.PhysicianID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		case errors.Is(err, ErrAmendReasonBlank):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFinalized), errors.Is(err, ErrDocumentRetired):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) MarkEnteredInError(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}
	d, err := h.svc.MarkEnteredInError(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		case errors.Is(err, ErrDocumentRetired):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid document id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "document not found")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) List(c echo.Context) error {
	page := pagination.FromContext(c)
	docs, total, err := h.svc.List(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	if docs == nil {
		docs = []*ClinicalDocument{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(docs, total, page.Limit, page.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	docs, err := h.svc.GetByPatient(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	if docs == nil {
		docs = []*ClinicalDocument{}
	}
	return c.JSON(http.StatusOK, docs)
}
