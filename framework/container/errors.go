package container

import (
	"fmt"
	"strings"
)

// Code identifies a class of container error.
type Code string

const (
	CodeDuplicateRegistration    Code = "DUPLICATE_REGISTRATION"
	CodeUnresolvedDependency     Code = "UNRESOLVED_DEPENDENCY"
	CodeCircularDependency       Code = "CIRCULAR_DEPENDENCY"
	CodeInvalidFactory           Code = "INVALID_FACTORY"
	CodeMissingType              Code = "MISSING_TYPE"
	CodeInvalidRegistration      Code = "INVALID_REGISTRATION"
	CodeAliasAlreadyDefined      Code = "ALIAS_ALREADY_DEFINED"
	CodeAliasConfiguration       Code = "ALIAS_CONFIGURATION"
	CodeInvalidOperationInStrict Code = "INVALID_OPERATION_IN_STRICT_MODE"
	CodeAsyncDependency          Code = "ASYNC_DEPENDENCY"
	CodeScopeUnavailable         Code = "SCOPE_UNAVAILABLE"
	CodeServiceNotFound          Code = "SERVICE_NOT_FOUND"
)

// Error is the structured error returned by every container operation.
// Match classes with errors.Is against the Err* sentinels and use errors.As
// to read the detail fields.
type Error struct {
	Code    Code
	Message string

	// Key is the service the error is about, when there is one.
	Key Key
	// Chain is the dependency chain of a circular dependency, first
	// element repeated at the end.
	Chain []Key
	// Param and Owner describe an unresolved constructor parameter.
	Param string
	Owner Key
	// Name is the alias involved in alias errors.
	Name string

	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches errors by code, so errors.Is(err, ErrCircularDependency) holds
// for every circular dependency error whatever its chain.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrDuplicateRegistration        = &Error{Code: CodeDuplicateRegistration, Message: "duplicate registration"}
	ErrUnresolvedDependency         = &Error{Code: CodeUnresolvedDependency, Message: "unresolved dependency"}
	ErrCircularDependency           = &Error{Code: CodeCircularDependency, Message: "circular dependency"}
	ErrInvalidFactory               = &Error{Code: CodeInvalidFactory, Message: "invalid factory"}
	ErrMissingType                  = &Error{Code: CodeMissingType, Message: "missing type"}
	ErrInvalidRegistration          = &Error{Code: CodeInvalidRegistration, Message: "invalid registration"}
	ErrAliasAlreadyDefined          = &Error{Code: CodeAliasAlreadyDefined, Message: "alias already defined"}
	ErrAliasConfiguration           = &Error{Code: CodeAliasConfiguration, Message: "alias configuration error"}
	ErrInvalidOperationInStrictMode = &Error{Code: CodeInvalidOperationInStrict, Message: "invalid operation in strict mode"}
	ErrAsyncDependency              = &Error{Code: CodeAsyncDependency, Message: "async dependency"}
	ErrScopeUnavailable             = &Error{Code: CodeScopeUnavailable, Message: "scope unavailable"}
	ErrServiceNotFound              = &Error{Code: CodeServiceNotFound, Message: "service not found"}
)

func errDuplicateRegistration(key Key) *Error {
	return &Error{
		Code:    CodeDuplicateRegistration,
		Message: fmt.Sprintf("container: [%s] is already registered", key),
		Key:     key,
	}
}

func errUnresolvedDependency(param string, owner Key) *Error {
	return &Error{
		Code:    CodeUnresolvedDependency,
		Message: fmt.Sprintf("container: cannot resolve parameter %q of [%s]", param, owner),
		Param:   param,
		Owner:   owner,
	}
}

func errCircularDependency(chain []Key) *Error {
	parts := make([]string, len(chain))
	for i, k := range chain {
		parts[i] = k.String()
	}
	return &Error{
		Code:    CodeCircularDependency,
		Message: "container: circular dependency: " + strings.Join(parts, " -> "),
		Chain:   chain,
	}
}

func errInvalidFactory(reason string) *Error {
	return &Error{
		Code:    CodeInvalidFactory,
		Message: "container: invalid factory: " + reason,
	}
}

func errMissingType() *Error {
	return &Error{
		Code:    CodeMissingType,
		Message: "container: factory result type cannot be inferred, pass container.As(key)",
	}
}

func errInvalidRegistration(key Key, reason string) *Error {
	return &Error{
		Code:    CodeInvalidRegistration,
		Message: fmt.Sprintf("container: cannot register [%s]: %s", key, reason),
		Key:     key,
	}
}

func errAliasAlreadyDefined(name string) *Error {
	return &Error{
		Code:    CodeAliasAlreadyDefined,
		Message: fmt.Sprintf("container: alias %q is already defined", name),
		Name:    name,
	}
}

func errAliasConfiguration(name string, target Key) *Error {
	return &Error{
		Code:    CodeAliasConfiguration,
		Message: fmt.Sprintf("container: alias %q points to unregistered [%s]", name, target),
		Name:    name,
		Key:     target,
	}
}

func errStrictMode(op string) *Error {
	return &Error{
		Code:    CodeInvalidOperationInStrict,
		Message: fmt.Sprintf("container: %s is not allowed in strict mode", op),
	}
}

func errAsyncDependency(key Key) *Error {
	return &Error{
		Code:    CodeAsyncDependency,
		Message: fmt.Sprintf("container: [%s] depends on async work, use AResolve", key),
		Key:     key,
	}
}

func errScopeUnavailable(key Key, reason string) *Error {
	return &Error{
		Code:    CodeScopeUnavailable,
		Message: fmt.Sprintf("container: scoped service [%s]: %s", key, reason),
		Key:     key,
	}
}

func errServiceNotFound(key Key) *Error {
	return &Error{
		Code:    CodeServiceNotFound,
		Message: fmt.Sprintf("container: no binding registered for [%s]", key),
		Key:     key,
	}
}
