package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/core/ports"
)

// userFormRequest is the add/edit form as submitted by the browser. UserID is
// only used by the edit form.
type userFormRequest struct {
	UserID    int64   `form:"userId"    json:"userId"`
	Username  string  `form:"username"  json:"username"  validate:"required,max=64"`
	FirstName string  `form:"firstName" json:"firstName" validate:"max=100"`
	LastName  string  `form:"lastName"  json:"lastName"  validate:"max=100"`
	Email     string  `form:"email"     json:"email"     validate:"omitempty,email"`
	Age       int     `form:"age"       json:"age"       validate:"gte=0,lte=150"`
	Password  string  `form:"password"  json:"password"  validate:"maxbytes=72"`
	RoleIDs   []int64 `form:"roleIds"   json:"roleIds"`
}

// bindUserForm binds and validates the form. Role ids are accepted both as
// roleIds and roleIds[].
func bindUserForm(c echo.Context) (userFormRequest, error) {
	var req userFormRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if params, err := c.FormParams(); err == nil {
		for _, v := range params["roleIds[]"] {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return req, echo.NewHTTPError(http.StatusBadRequest, "invalid role id")
			}
			req.RoleIDs = append(req.RoleIDs, id)
		}
	}

	if err := c.Validate(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return req, nil
}

func (r userFormRequest) toForm() ports.UserForm {
	return ports.UserForm{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Age:       r.Age,
		Password:  r.Password,
		RoleIDs:   r.RoleIDs,
	}
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}
