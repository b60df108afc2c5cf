package dispatch

import (
	"net/http"
	"strings"
)

// Response permite a un handler controlar status y headers. Cualquier otro
// tipo de retorno se serializa en la capa http.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// defaultOptionsResponse es la respuesta vacía del short-circuit de
// OPTIONS automático: sin transacción, sin dispatch.
func defaultOptionsResponse(allow []string) *Response {
	h := http.Header{}
	if len(allow) > 0 {
		h.Set("Allow", strings.Join(allow, ", "))
	}
	return &Response{Status: http.StatusOK, Header: h}
}
