package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps database and infrastructure errors to a code/message pair.
// Sensitive detail stays out of the message; the context string (e.g.
// "create store") selects the most specific wording.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "An internal error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM base errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. Constraint violations (PostgreSQL codes 23505/23503/23514, plus the
	// equivalent sqlite wording used by the test database)

	if strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint") ||
		strings.Contains(errStrLower, "constraint failed: unique") {
		return parseDuplicateKeyError(errStrLower, context)
	}

	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStrLower, context)
	}

	if strings.Contains(errStrLower, "check constraint") {
		return parseCheckConstraintError(errStrLower)
	}

	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// 3. Connectivity
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "The service is temporarily unavailable. Please try again later",
		}
	}

	// 4. Default internal error
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errLower string, context string) ErrorInfo {
	// ratings(store_id, user_id) composite index
	if strings.Contains(errLower, "idx_store_user_rating") ||
		(strings.Contains(errLower, "ratings") && strings.Contains(errLower, "store_id")) {
		return ErrorInfo{
			Code:    RatingAlreadyExists,
			Message: "You have already rated this store",
		}
	}

	if strings.Contains(errLower, "stores") && strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    StoreEmailExists,
			Message: "A store with this email already exists",
		}
	}

	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "This email is already in use",
		}
	}

	// context disambiguates when the index name is not in the error text
	if strings.Contains(context, "store") {
		return ErrorInfo{
			Code:    StoreEmailExists,
			Message: "A store with this email already exists",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "This record already exists",
	}
}

func parseForeignKeyError(errLower string, context string) ErrorInfo {
	if strings.Contains(errLower, "still referenced") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "This record is referenced by other data and cannot be deleted",
		}
	}

	if strings.Contains(errLower, "user_id") {
		return ErrorInfo{
			Code:    UserNotFound,
			Message: "The referenced user does not exist",
		}
	}
	if strings.Contains(errLower, "store_id") {
		return ErrorInfo{
			Code:    StoreNotFound,
			Message: "The referenced store does not exist",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "A referenced record could not be found",
	}
}

func parseCheckConstraintError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "rating") {
		return ErrorInfo{
			Code:    RatingInvalidValue,
			Message: "Rating must be between 1 and 5",
		}
	}

	return ErrorInfo{
		Code:    ValidationInvalidInput,
		Message: "One or more fields are invalid",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "store") {
		return "Store not found"
	}
	if strings.Contains(contextLower, "user") {
		return "User not found"
	}
	if strings.Contains(contextLower, "rating") {
		return "Rating not found"
	}

	return "The requested record could not be found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") {
		return "Creation failed. Please try again later"
	}
	if strings.Contains(contextLower, "update") {
		return "Update failed. Please try again later"
	}
	if strings.Contains(contextLower, "delete") {
		return "Deletion failed. Please try again later"
	}

	return "An internal error occurred. Please try again later"
}

// ParseAndRespond parses err and writes the standard error envelope.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
