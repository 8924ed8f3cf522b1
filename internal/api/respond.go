package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// MIMEApplicationMsgpack is the content type for MessagePack responses.
const MIMEApplicationMsgpack = "application/msgpack"

// wantsMsgpack reports whether the client asked for MessagePack.
func wantsMsgpack(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, MIMEApplicationMsgpack) ||
		strings.Contains(accept, "application/x-msgpack")
}

// respond writes v as JSON, or MessagePack when the Accept header asks for it.
func respond(c echo.Context, status int, v interface{}) error {
	if !wantsMsgpack(c) {
		return c.JSON(status, v)
	}

	data, err := msgpack.Marshal(v)
	if err != nil {
		return NewInternalError("failed to encode response", err)
	}
	return c.Blob(status, MIMEApplicationMsgpack, data)
}
