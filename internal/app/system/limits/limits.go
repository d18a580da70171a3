// internal/app/system/limits/limits.go
package limits

// Request body size limit for JSON endpoints.
// This helps prevent memory exhaustion from oversized requests.
const MaxRequestBody = 1 << 20 // 1 MB

// Field length limits, counted in bytes after trimming and sanitizing.
const (
	MaxNewsletterName = 200
	MaxPrompt         = 4000
	MaxQuestionText   = 1000
	MaxQuestionTags   = 20
	MaxResponse       = 20000
	MaxDisplayName    = 100
)
