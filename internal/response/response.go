// Package response defines the uniform envelope applied to every API response.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// Envelope is the wire shape of all API responses.
type Envelope struct {
	StatusCode int               `json:"status_code"`
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Meta       *Meta             `json:"meta,omitempty"`
	Timestamp  string            `json:"timestamp"`
}

// Meta carries pagination details on list responses.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func OK(message string, data interface{}) Envelope {
	return Envelope{
		StatusCode: http.StatusOK,
		Success:    true,
		Message:    message,
		Data:       data,
		Timestamp:  now(),
	}
}

func Created(message string, data interface{}) Envelope {
	return Envelope{
		StatusCode: http.StatusCreated,
		Success:    true,
		Message:    message,
		Data:       data,
		Timestamp:  now(),
	}
}

// Deleted acknowledges a removal without a body.
func Deleted(message string) Envelope {
	return Envelope{
		StatusCode: http.StatusOK,
		Success:    true,
		Message:    message,
		Timestamp:  now(),
	}
}

func Paginated(message string, data interface{}, total, page, limit int) Envelope {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Envelope{
		StatusCode: http.StatusOK,
		Success:    true,
		Message:    message,
		Data:       data,
		Meta:       &Meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
		Timestamp:  now(),
	}
}

func Error(statusCode int, message string) Envelope {
	return Envelope{
		StatusCode: statusCode,
		Success:    false,
		Message:    message,
		Timestamp:  now(),
	}
}

// ValidationError maps validator failures to per-field messages.
func ValidationError(errs validator.ValidationErrors) Envelope {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "email":
			fields[fe.Field()] = "must be a valid email address"
		case "min":
			fields[fe.Field()] = "must be at least " + fe.Param()
		case "max":
			fields[fe.Field()] = "must be at most " + fe.Param()
		case "oneof":
			fields[fe.Field()] = "must be one of: " + fe.Param()
		case "gt":
			fields[fe.Field()] = "must be greater than " + fe.Param()
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return Envelope{
		StatusCode: http.StatusBadRequest,
		Success:    false,
		Message:    "Validation failed",
		Errors:     fields,
		Timestamp:  now(),
	}
}

// Write serializes env using its own status code.
func Write(w http.ResponseWriter, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	json.NewEncoder(w).Encode(env)
}
