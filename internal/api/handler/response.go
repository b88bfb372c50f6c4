package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
)

// envelope is the success body of every endpoint.
type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Meta    *pageMeta `json:"meta,omitempty"`
}

type pageMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func ok(c echo.Context, data any) error {
	return respond(c, http.StatusOK, data)
}

func created(c echo.Context, data any) error {
	return respond(c, http.StatusCreated, data)
}

func paginated[T any](c echo.Context, p *domain.Page[T]) error {
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    p.Items,
		Meta: &pageMeta{
			Total:    p.Total,
			Page:     p.Page,
			PerPage:  p.PerPage,
			LastPage: p.LastPage(),
		},
	})
}

// pageRequest reads the page and per_page query parameters.
func pageRequest(c echo.Context) (domain.PageRequest, error) {
	var page, perPage int
	err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("per_page", &perPage).
		BindError()
	if err != nil {
		return domain.PageRequest{}, domain.ErrValidation.WithMessage("page and per_page must be integers")
	}
	return domain.NewPageRequest(page, perPage), nil
}

// bind decodes the request body into req and runs the registered validator.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.ErrValidation.WithMessage("invalid payload")
	}
	return c.Validate(req)
}
