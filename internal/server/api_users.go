package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/adapters/http/mapper"
	userports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/ports"
	apierrors "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/errors"
	"github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/pagination"
)

// UserAPI implements the user routes.
type UserAPI struct {
	service  userports.Service
	problems *apierrors.ChainedResponder
}

// NewUserAPI wires dependencies.
func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service, problems: newUserResponder()}
}

// Post /api/users
// Create user
func (api *UserAPI) CreateUser(c *gin.Context) {
	var payload userhttpmapper.CreateUserRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.problems.BadRequest(c, err.Error())
		return
	}
	user, err := api.service.CreateUser(c.Request.Context(), userhttpmapper.ToCreateInput(payload))
	if err != nil {
		api.problems.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainUser(user))
}

// Get /api/users
// List users
func (api *UserAPI) ListUsers(c *gin.Context) {
	page, err := api.service.ListUsers(c.Request.Context(), pageParams(c))
	if err != nil {
		api.problems.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pagination.Map(page, userhttpmapper.FromDomainUser))
}

// Get /api/users/:id
// Get user by id
func (api *UserAPI) GetUser(c *gin.Context) {
	id := c.Param("id")
	user, err := api.service.GetUser(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, api.problems, "user", id, userports.ErrNotFound, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Put /api/users/:id
// Update the supplied fields of a user
func (api *UserAPI) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	var payload userhttpmapper.UpdateUserRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.problems.BadRequest(c, err.Error())
		return
	}
	user, err := api.service.UpdateUser(c.Request.Context(), userhttpmapper.ToUpdateInput(id, payload))
	if err != nil {
		respondLookupError(c, api.problems, "user", id, userports.ErrNotFound, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Delete /api/users/:id
// Delete user
func (api *UserAPI) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := api.service.DeleteUser(c.Request.Context(), id); err != nil {
		respondLookupError(c, api.problems, "user", id, userports.ErrNotFound, err)
		return
	}
	c.Status(http.StatusNoContent)
}
