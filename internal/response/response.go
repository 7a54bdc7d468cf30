package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the envelope of every JSON API response. Exactly one of Data
// and Error is set.
type Response struct {
	Data     interface{} `json:"data"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// ErrorBody is the error half of the envelope. Fields carries request
// binding errors keyed by field name; Issues carries assessment-level lists
// such as structure issues or per-question field errors.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Issues  interface{}       `json:"issues,omitempty"`
}

// Metadata ties a response to its request for tracing.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// Success writes data with the given status.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{Data: data, Metadata: buildMetadata(c)})
}

// Fail writes an error envelope carrying only the code and its message.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, failure(c, &ErrorBody{Code: code}))
}

// FailWithFields writes an error envelope with per-field binding errors.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, failure(c, &ErrorBody{Code: code, Fields: fields}))
}

// FailWithIssues writes an error envelope carrying a list of issues.
func FailWithIssues(c *gin.Context, statusCode int, code ErrCode, issues interface{}) {
	c.JSON(statusCode, failure(c, &ErrorBody{Code: code, Issues: issues}))
}

// AbortFail stops the middleware chain with an error envelope.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, failure(c, &ErrorBody{Code: code}))
}

func failure(c *gin.Context, body *ErrorBody) Response {
	body.Message = GetMessage(body.Code)
	return Response{Error: body, Metadata: buildMetadata(c)}
}

func buildMetadata(c *gin.Context) Metadata {
	id := c.GetString(ContextKeyRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
