package v1

// Errors
const (
	UnknownErrorCode    = 0
	UnknownErrorMessage = "unknown error"

	InvalidCredentialsCode    = 1001
	InvalidCredentialsMessage = "invalid username or password"
	UserNotFoundCode          = 1002
	UserNotFoundMessage       = "user not found"
	TokenNotFoundCode         = 1003
	TokenNotFoundMessage      = "refresh token not found"
	TokenInactiveCode         = 1004
	TokenInactiveMessage      = "refresh token expired or revoked"
	TooManyAttemptsCode       = 1005
	TooManyAttemptsMessage    = "too many login attempts"
	UnauthorizedCode          = 1006
	UnauthorizedMessage       = "unauthorized"

	ValidationErrorCode    = 6000
	ValidationErrorMessage = "validation error"
)

type ErrorCode int
type ErrorMessage string

type ErrorStruct struct {
	ErrorCode    `json:"error_code"`
	ErrorMessage `json:"error_message"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	Errors       []ValidationError `json:"validation_errors"`
} // @name ValidationErrorStruct

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

func getErrorStruct(code ErrorCode) *ErrorStruct {
	errorStruct := &ErrorStruct{
		ErrorCode:    UnknownErrorCode,
		ErrorMessage: UnknownErrorMessage,
	}

	switch code {
	case InvalidCredentialsCode:
		errorStruct.ErrorCode = InvalidCredentialsCode
		errorStruct.ErrorMessage = InvalidCredentialsMessage
	case UserNotFoundCode:
		errorStruct.ErrorCode = UserNotFoundCode
		errorStruct.ErrorMessage = UserNotFoundMessage
	case TokenNotFoundCode:
		errorStruct.ErrorCode = TokenNotFoundCode
		errorStruct.ErrorMessage = TokenNotFoundMessage
	case TokenInactiveCode:
		errorStruct.ErrorCode = TokenInactiveCode
		errorStruct.ErrorMessage = TokenInactiveMessage
	case TooManyAttemptsCode:
		errorStruct.ErrorCode = TooManyAttemptsCode
		errorStruct.ErrorMessage = TooManyAttemptsMessage
	case UnauthorizedCode:
		errorStruct.ErrorCode = UnauthorizedCode
		errorStruct.ErrorMessage = UnauthorizedMessage
	}

	return errorStruct
}
