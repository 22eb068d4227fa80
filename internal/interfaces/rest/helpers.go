package rest

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/auth"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/errors"
)

// GetUserFromContext extracts the authenticated session from gin.Context.
func GetUserFromContext(c *gin.Context) *auth.UserSession {
	userInterface, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil
	}
	user := userInterface.(auth.UserSession)
	return &user
}

// RespondAppError sends a standardised JSON error response using pkg/errors.
// Validation errors additionally carry their field→message map.
func RespondAppError(c *gin.Context, err error) {
	status := errors.GetHTTPStatus(err)
	code := errors.GetErrorCode(err)

	if status >= 500 {
		log.Printf("ERROR [%d] %s %s: %s", status, c.Request.Method, c.Request.URL.Path, err.Error())
	}

	body := gin.H{
		"error":   err.Error(),
		"message": err.Error(),
		"code":    code,
		"data":    nil,
	}
	if v := errors.AsValidation(err); v != nil {
		body["errors"] = v.Fields
	}
	if m, ok := err.(*errors.CSVSchemaMismatchError); ok {
		body["missing_fields"] = m.MissingFields
		body["extra_fields"] = m.ExtraFields
	}
	c.JSON(status, body)
}

// BindJSON binds JSON and returns true if successful. On failure it sends a
// bad request error.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondAppError(c, errors.NewInvalidInputError("body", err.Error()))
		return false
	}
	return true
}

// HandleGetEnvelope executes a read action and returns the result wrapped in
// a JSON key. Response: { [key]: result }
func HandleGetEnvelope(c *gin.Context, key string, action func() (interface{}, error)) {
	result, err := action()
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{key: result})
}
