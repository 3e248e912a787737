package mapper

import (
	"time"

	userdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/domain"
	userports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/ports"
)

// CreateUserRequest is the POST /api/users payload.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the PUT /api/users/:id payload; omitted fields are left untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// User is the transport shape. The credential hash never leaves the service.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToCreateInput(req CreateUserRequest) userports.CreateUserInput {
	return userports.CreateUserInput{Name: req.Name, Email: req.Email, Password: req.Password}
}

func ToUpdateInput(id string, req UpdateUserRequest) userports.UpdateUserInput {
	return userports.UpdateUserInput{ID: id, Name: req.Name, Email: req.Email, Password: req.Password}
}

// FromDomainUser converts a domain user to the transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
