package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/api/metrics"
	"github.com/99minutos/user-admin/internal/api/views"
	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

const adminPath = "/admin"

// AdminHandler serves the user administration pages. Service errors other than
// the edit-form lookup are returned to the central error handler.
type AdminHandler struct {
	users ports.UserService
	roles ports.RoleService
}

func NewAdminHandler(users ports.UserService, roles ports.RoleService) *AdminHandler {
	return &AdminHandler{users: users, roles: roles}
}

// List handles GET /admin.
//
// @Summary      List users
// @Tags         admin
// @Produce      html
// @Security     BearerAuth
// @Param        error  query     string  false  "Error flag set by a failed redirect (e.g. user_not_found)"
// @Success      200    {string}  string  "user list page"
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /admin [get]
func (h *AdminHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.users.ListUsers(ctx)
	if err != nil {
		return err
	}
	roles, err := h.roles.ListRoles(ctx)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, views.Admin, views.AdminPage{
		Users:       users,
		Roles:       roles,
		Error:       c.QueryParam("error"),
		CurrentUser: currentUsername(c),
		CSRF:        csrfToken(c),
	})
}

// AddForm handles GET /admin/add.
//
// @Summary      Show the create-user form
// @Tags         admin
// @Produce      html
// @Security     BearerAuth
// @Success      200  {string}  string  "empty user form"
// @Router       /admin/add [get]
func (h *AdminHandler) AddForm(c echo.Context) error {
	roles, err := h.roles.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, views.UserForm, views.UserFormPage{
		Roles: roles,
		CSRF:  csrfToken(c),
	})
}

// Add handles POST /admin/add.
//
// @Summary      Create a user
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Security     BearerAuth
// @Param        body  body  userFormRequest  true  "User form"
// @Success      302   "redirect to /admin"
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/add [post]
func (h *AdminHandler) Add(c echo.Context) error {
	req, err := bindUserForm(c)
	if err != nil {
		return err
	}
	_, err = h.users.CreateUser(c.Request().Context(), req.toForm())
	metrics.UserMutationsTotal.WithLabelValues("create", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, adminPath)
}

// EditForm handles GET /admin/edit/:id. An unknown id redirects back to the
// list with error=user_not_found.
//
// @Summary      Show the edit-user form
// @Tags         admin
// @Produce      html
// @Security     BearerAuth
// @Param        id   path      int     true  "User ID"
// @Success      200  {string}  string  "pre-filled user form"
// @Success      302  "redirect to /admin?error=user_not_found"
// @Router       /admin/edit/{id} [get]
func (h *AdminHandler) EditForm(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	form, err := h.users.GetUserForm(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Redirect(http.StatusFound, adminPath+"?error=user_not_found")
		}
		return err
	}
	roles, err := h.roles.ListRoles(ctx)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, views.UserForm, views.UserFormPage{
		UserID: id,
		Form:   *form,
		Roles:  roles,
		CSRF:   csrfToken(c),
	})
}

// Edit handles POST /admin/edit. The user id travels in the userId field.
//
// @Summary      Update a user
// @Tags         admin
// @Accept       x-www-form-urlencoded
// @Security     BearerAuth
// @Param        body  body  userFormRequest  true  "User form including userId"
// @Success      302   "redirect to /admin"
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/edit [post]
func (h *AdminHandler) Edit(c echo.Context) error {
	req, err := bindUserForm(c)
	if err != nil {
		return err
	}
	if req.UserID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	_, err = h.users.UpdateUser(c.Request().Context(), req.toForm(), req.UserID)
	metrics.UserMutationsTotal.WithLabelValues("update", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, adminPath)
}

// Delete handles POST /admin/delete/:id.
//
// @Summary      Delete a user
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "User ID"
// @Success      302  "redirect to /admin"
// @Failure      404  {object}  errorResponse
// @Router       /admin/delete/{id} [post]
func (h *AdminHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	err = h.users.DeleteUser(c.Request().Context(), id)
	metrics.UserMutationsTotal.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, adminPath)
}
