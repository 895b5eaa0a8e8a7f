package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/coach-core/internal/repository"
	"alcyxob/coach-core/internal/service"
)

// statusFor maps service and store errors to HTTP status codes.
func statusFor(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrProgramNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, repository.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError aborts with the mapped status. Internal errors are recorded on the context for
// the request log and never echoed to the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		abortWithError(c, status, "Internal server error")
		return
	}
	abortWithError(c, status, err.Error())
}

// currentUser aborts with 401 when the request carries no authenticated user.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := getUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return id, false
	}
	return id, true
}

// pathObjectID parses the named path parameter, aborting with 400 when it is not an ObjectID.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return id, false
	}
	return id, true
}
