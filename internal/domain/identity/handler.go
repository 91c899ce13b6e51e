package identity

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
	read := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	read.GET("/patients", h.ListPatients)
	read.GET("/patients/:id", h.GetPatient)
	read.GET("/physicians", h.ListPhysicians)
	read.GET("/physicians/:id", h.GetPhysician)

	write := api.Group("", auth.RequireRole("admin", "registrar"))
	write.POST("/patients", h.CreatePatient)
	write.PUT("/patients/:id", h.UpdatePatient)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.DELETE("/patients/:id", h.DeletePatient)
	admin.POST("/physicians", h.CreatePhysician)
	admin.PUT("/physicians/:id", h.UpdatePhysician)
	admin.DELETE("/physicians/:id", h.DeletePhysician)
}

// -- Patient --

func (h *Handler) CreatePatient(c echo.Context) error {
	p := &Patient{}
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreatePatient(c.Request().Context(), p); err != nil {
		if errors.Is(err, ErrDuplicateMRN) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	p := &Patient{}
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), p); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPatients(c echo.Context) error {
	page := pagination.FromContext(c)

	params := map[string]string{}
	for _, key := range []string{"name", "mrn", "gender", "active"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}

	var (
		patients []*Patient
		total    int
		err      error
	)
	if len(params) > 0 {
		patients, total, err = h.svc.SearchPatients(c.Request().Context(), params, page.Limit, page.Offset)
	} else {
		patients, total, err = h.svc.ListPatients(c.Request().Context(), page.Limit, page.Offset)
	}
	if err != nil {
		return err
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, page.Limit, page.Offset))
}

// -- Physician --

func (h *Handler) CreatePhysician(c echo.Context) error {
	p := &Physician{}
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreatePhysician(c.Request().Context(), p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPhysician(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid physician id")
	}
	p, err := h.svc.GetPhysician(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrPhysicianNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "physician not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePhysician(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid physician id")
	}
	p := &Physician{}
	if err := c.Bind(p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p.ID = id
	if err := h.svc.UpdatePhysician(c.Request().Context(), p); err != nil {
		if errors.Is(err, ErrPhysicianNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "physician not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePhysician(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid physician id")
	}
	if err := h.svc.DeletePhysician(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrPhysicianNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "physician not found")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPhysicians(c echo.Context) error {
	if specialty := c.QueryParam("specialty"); specialty != "" {
		physicians, err := h.svc.ListPhysiciansBySpecialty(c.Request().Context(), specialty)
		if err != nil {
			return err
		}
		if physicians == nil {
			physicians = []*Physician{}
		}
		return c.JSON(http.StatusOK, physicians)
	}

	page := pagination.FromContext(c)
	physicians, total, err := h.svc.ListPhysicians(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	if physicians == nil {
		physicians = []*Physician{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(physicians, total, page.Limit, page.Offset))
}
