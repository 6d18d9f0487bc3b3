package response

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response is the success envelope shared by every route.
type Response struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg,omitempty"`
}

type ErrorItem struct {
	Status bool   `json:"status"`
	Msg    string `json:"msg"`
}

// ErrorResponse is the failure envelope: one item per violated rule for
// validation failures, a single item otherwise.
type ErrorResponse struct {
	Errors []ErrorItem `json:"errors"`
}

func OK() Response {
	return Response{Status: true}
}

func OKMsg(msg string) Response {
	return Response{Status: true, Msg: msg}
}

func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Errors: []ErrorItem{{Status: false, Msg: msg}},
	}
}

func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	items := make([]ErrorItem, 0, len(errs))

	for _, err := range errs {
		var msg string

		switch err.ActualTag() {
		case "required":
			msg = fmt.Sprintf("%s is required.", err.Field())
		case "email":
			msg = "Invalid email address."
		case "min", "max":
			msg = fmt.Sprintf("%s length is out of bounds.", err.Field())
		case "handle":
			msg = "Only these characters are allowed (a-z, A-Z, 0-9, _underscore, .dot)."
		case "numeric":
			msg = fmt.Sprintf("%s must be numeric.", err.Field())
		default:
			msg = fmt.Sprintf("%s is not valid.", err.Field())
		}

		items = append(items, ErrorItem{Status: false, Msg: msg})
	}

	return ErrorResponse{Errors: items}
}
