package domain

type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindInvalidCredentials
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Error 业务错误：终止性、不可重试，Msg 直接返回给调用方
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, ErrConflict) 按 Kind 匹配
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrForbidden          = &Error{Kind: KindForbidden}
)

func Validation(msg string) error         { return &Error{Kind: KindValidation, Msg: msg} }
func Conflict(msg string) error           { return &Error{Kind: KindConflict, Msg: msg} }
func NotFound(msg string) error           { return &Error{Kind: KindNotFound, Msg: msg} }
func InvalidCredentials(msg string) error { return &Error{Kind: KindInvalidCredentials, Msg: msg} }
func Forbidden(msg string) error          { return &Error{Kind: KindForbidden, Msg: msg} }
