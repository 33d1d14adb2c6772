package web

import (
	"errors"

	"go-portmap/internal/inventory"

	"github.com/gofiber/fiber/v2"
)

// ErrConfirmationRequired is returned for cascading deletes and resets that
// were not explicitly confirmed with ?confirm=true.
var ErrConfirmationRequired = errors.New("confirmation required")

type ErrorCode int

const (
	NoError ErrorCode = iota

	InvalidRequest       ErrorCode = 120000
	NotFound             ErrorCode = 120001
	Duplicate            ErrorCode = 120002
	PortOutOfRange       ErrorCode = 120003
	NoConnection         ErrorCode = 120004
	MalformedDocument    ErrorCode = 120005
	ConfirmationRequired ErrorCode = 120006
	NoFreePort           ErrorCode = 120007
	Internal             ErrorCode = 120008
)

const UnknownError = "Unknown Error"

var errorCodeString = map[ErrorCode]string{
	NoError:              "OK",
	InvalidRequest:       "Invalid Request",
	NotFound:             "Not Found",
	Duplicate:            "Already exists",
	PortOutOfRange:       "Switch port is outside the switch's port range",
	NoConnection:         "The wall port has no connection",
	MalformedDocument:    "The document could not be read",
	ConfirmationRequired: "This action removes related data and must be confirmed",
	NoFreePort:           "All ports on this switch are in use",
	Internal:             "Internal Error",
}

var errorCodeStatus = map[ErrorCode]int{
	NoError:              fiber.StatusOK,
	InvalidRequest:       fiber.StatusBadRequest,
	NotFound:             fiber.StatusNotFound,
	Duplicate:            fiber.StatusConflict,
	PortOutOfRange:       fiber.StatusUnprocessableEntity,
	NoConnection:         fiber.StatusNotFound,
	MalformedDocument:    fiber.StatusBadRequest,
	ConfirmationRequired: fiber.StatusConflict,
	NoFreePort:           fiber.StatusConflict,
	Internal:             fiber.StatusInternalServerError,
}

func (code ErrorCode) String() string {
	if msg, ok := errorCodeString[code]; ok {
		return msg
	}
	return UnknownError
}

func (code ErrorCode) Status() int {
	if s, ok := errorCodeStatus[code]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

var sentinels = []struct {
	err  error
	code ErrorCode
}{
	{inventory.ErrNotFound, NotFound},
	{inventory.ErrInvalidInput, InvalidRequest},
	{inventory.ErrDuplicate, Duplicate},
	{inventory.ErrPortOutOfRange, PortOutOfRange},
	{inventory.ErrNoConnection, NoConnection},
	{inventory.ErrMalformedDocument, MalformedDocument},
	{ErrConfirmationRequired, ConfirmationRequired},
}

func codeOf(err error) ErrorCode {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return InvalidRequest
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return Internal
}

func respondCode(c *fiber.Ctx, code ErrorCode, detail string, extra fiber.Map) error {
	body := fiber.Map{"code": int(code), "message": code.String()}
	if detail != "" {
		body["error"] = detail
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(code.Status()).JSON(body)
}
