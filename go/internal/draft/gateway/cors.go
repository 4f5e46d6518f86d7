package gateway

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORS builds the CORS policy for the API. An empty origin list allows any origin.
func NewCORS(allowedOrigins []string) *cors.Cors {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", UserIDHeader},
		MaxAge:         86400,
	})
}
