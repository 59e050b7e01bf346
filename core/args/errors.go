package args

import "fmt"

// Code identifies why a raw argument was rejected.
type Code int

const (
	CodeEmpty Code = iota + 1
	CodeNotANumber
	CodeBelowMinimum
	CodeAboveMaximum
	CodeNotAnInteger
	CodeInvalidUser
	CodeCannotTargetSelfBot
	CodeCannotTargetSender
	CodeUserNotInRoom
	CodeInvalidShopItem
	CodeInvalidStock
)

// ValidationError is what a kind returns for input the user can correct.
type ValidationError struct {
	Code    Code
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(code Code, format string, v ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, v...)}
}

// ArgumentError reports which argument failed and why. Err is always a
// *ValidationError.
type ArgumentError struct {
	Name string
	Raw  string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("Invalid argument `%s`: %s", e.Name, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// MissingArgumentError is returned when a required argument has no token left.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("Missing required argument `%s`.", e.Name)
}
