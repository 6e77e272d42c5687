// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBodySize is the maximum size for JSON request bodies.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxDocumentSize caps a single verification document upload.
	MaxDocumentSize = 10 << 20 // 10 MB

	// MaxRegisterFormSize is the maximum size for the multipart
	// registration form, documents included.
	MaxRegisterFormSize = 32 << 20 // 32 MB
)
