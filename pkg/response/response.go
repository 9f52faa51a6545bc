// Package response defines the JSON envelope shared by every endpoint.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

// Envelope wraps every JSON body. Exactly one of Data and Error is set.
type Envelope struct {
	Data  interface{}      `json:"data,omitempty"`
	Error *appErrors.Error `json:"error,omitempty"`
}

// API responses are per-caller, so nothing is shared-cacheable.
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// OK sends a 200 with the data wrapped in the envelope.
func OK(c *gin.Context, data interface{}) {
	noStore(c)
	c.JSON(http.StatusOK, Envelope{Data: data})
}

// Created sends a 201 with the data wrapped in the envelope.
func Created(c *gin.Context, data interface{}) {
	noStore(c)
	c.JSON(http.StatusCreated, Envelope{Data: data})
}

// Error normalizes the error and sends it with its mapped status.
func Error(c *gin.Context, err error) {
	noStore(c)
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends an empty 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
