package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/application"
	catalogdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/catalog/domain"
	orderapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/orders/application"
	userapp "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/application"
	userdomain "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/domain"
	userports "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/domains/users/ports"
	apierrors "github.com/torneseumprogramador/desafio-arquiteturas-cqrs/internal/shared/errors"
)

// Order rejection problems. Each carries a machine-readable code extension.
var (
	problemInvalidOrder = apierrors.ProblemDetail{
		Type:   apierrors.TypeInvalidOrder,
		Title:  "Invalid Order Request",
		Status: http.StatusBadRequest,
	}
	problemUserNotFound = apierrors.ProblemDetail{
		Type:   apierrors.TypeUserNotFound,
		Title:  "User Not Found",
		Status: http.StatusBadRequest,
	}
	problemProductNotFound = apierrors.ProblemDetail{
		Type:   apierrors.TypeProductNotFound,
		Title:  "Product Not Found",
		Status: http.StatusBadRequest,
	}
	problemInsufficientStock = apierrors.ProblemDetail{
		Type:   apierrors.TypeInsufficientStock,
		Title:  "Insufficient Stock",
		Status: http.StatusBadRequest,
	}
)

// Codes sent in the "code" extension of order rejections.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
)

// newOrderResponder maps order rejections to their problem types; anything
// unclassified is answered with an opaque 500.
func newOrderResponder() *apierrors.ChainedResponder {
	return apierrors.NewChainedResponder("", orderProblem)
}

func newProductResponder() *apierrors.ChainedResponder {
	problems := apierrors.NewChainedResponder("")
	problems.AddMapper(apierrors.ValidationMapper(catalogapp.ErrInvalidInput, map[error]string{
		catalogdomain.ErrEmptyName:     "name",
		catalogdomain.ErrNegativePrice: "price",
		catalogdomain.ErrNegativeStock: "stock",
	}))
	return problems
}

func newUserResponder() *apierrors.ChainedResponder {
	problems := apierrors.NewChainedResponder("")
	problems.AddMapper(apierrors.SentinelMapper(userports.ErrEmailTaken, apierrors.ErrConflict))
	problems.AddMapper(apierrors.ValidationMapper(userapp.ErrInvalidInput, map[error]string{
		userdomain.ErrEmptyName:     "name",
		userdomain.ErrInvalidEmail:  "email",
		userdomain.ErrEmptyPassword: "password",
	}))
	return problems
}

// respondLookupError answers a missing resource with a 404 naming it and
// hands everything else to the chain.
func respondLookupError(c *gin.Context, problems *apierrors.ChainedResponder, resourceType, id string, notFound, err error) {
	if errors.Is(err, notFound) {
		problems.NotFound(c, resourceType, id)
		return
	}
	problems.RespondError(c, err)
}

// orderProblem translates a classified order creation failure. The second
// result is false for persistence failures and unclassified errors.
func orderProblem(err error) (apierrors.ProblemDetail, bool) {
	var (
		invalid  *orderapp.InvalidRequestError
		user     *orderapp.UserNotFoundError
		product  *orderapp.ProductNotFoundError
		shortage *orderapp.InsufficientStockError
	)
	switch {
	case errors.As(err, &shortage):
		return problemInsufficientStock.
			WithDetail(shortage.Error()).
			WithCode(CodeInsufficientStock).
			WithExtension("productId", shortage.ProductID).
			WithExtension("productName", shortage.ProductName).
			WithExtension("available", shortage.Available).
			WithExtension("requested", shortage.Requested), true
	case errors.As(err, &product):
		return problemProductNotFound.
			WithDetail(product.Error()).
			WithCode(CodeProductNotFound).
			WithExtension("productId", product.ProductID), true
	case errors.As(err, &user):
		return problemUserNotFound.
			WithDetail(user.Error()).
			WithCode(CodeUserNotFound).
			WithExtension("userId", user.UserID), true
	case errors.As(err, &invalid):
		problem := problemInvalidOrder.WithDetail(invalid.Error()).WithCode(CodeInvalidRequest)
		if invalid.ProductID != "" {
			problem = problem.WithExtension("productId", invalid.ProductID)
		}
		return problem, true
	}

	switch orderapp.KindOf(err) {
	case orderapp.KindInvalidRequest:
		return problemInvalidOrder.WithDetail(err.Error()).WithCode(CodeInvalidRequest), true
	case orderapp.KindUserNotFound:
		return problemUserNotFound.WithDetail(err.Error()).WithCode(CodeUserNotFound), true
	case orderapp.KindProductNotFound:
		return problemProductNotFound.WithDetail(err.Error()).WithCode(CodeProductNotFound), true
	case orderapp.KindInsufficientStock:
		return problemInsufficientStock.WithDetail(err.Error()).WithCode(CodeInsufficientStock), true
	}
	return apierrors.ProblemDetail{}, false
}
