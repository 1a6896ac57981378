package middleware

import (
	"net/http"

	"github.com/CAFxX/httpcompression"
)

// Compress negotiates gzip/brotli/deflate for responses. Event streams are
// left uncompressed so datastar patches arrive immediately.
func Compress() (func(http.Handler) http.Handler, error) {
	return httpcompression.DefaultAdapter(
		httpcompression.ContentTypes([]string{"text/event-stream"}, true),
	)
}
