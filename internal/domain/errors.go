package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist or is not visible to the caller.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing destination, day count outside 1..14).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrBusy is returned by the planner when a run for the same owner is
// already in flight.
var ErrBusy = errors.New("a generation is already in progress")

// Generation errors.
var (
	// ErrMissingCredential means no API key is configured for the
	// generation provider. It is raised before any network call.
	ErrMissingCredential = errors.New("generation credential is not configured")

	// ErrInvalidCredential means the provider rejected the configured key.
	ErrInvalidCredential = errors.New("generation credential was rejected")

	// ErrMalformedResponse means the model output did not match the
	// itinerary schema.
	ErrMalformedResponse = errors.New("malformed generation response")

	// ErrProviderUnavailable covers timeouts, 5xx responses and transport failures.
	ErrProviderUnavailable = errors.New("generation provider unavailable")
)

// ErrEnrichmentFailed marks a failed weather lookup. It is only ever logged.
var ErrEnrichmentFailed = errors.New("weather enrichment failed")

// Store errors.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIndexMissing     = errors.New("required index missing")
)

// Identity errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrConfiguration      = errors.New("email/password sign-in is not enabled")
)

// ErrorKind is the closed set of failure kinds callers switch on.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindUnknown             ErrorKind = "unknown"
	KindNotFound            ErrorKind = "not_found"
	KindValidation          ErrorKind = "validation_error"
	KindBusy                ErrorKind = "busy"
	KindMissingCredential   ErrorKind = "missing_credential"
	KindInvalidCredential   ErrorKind = "invalid_credential"
	KindMalformedResponse   ErrorKind = "malformed_response"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
	KindEnrichmentFailed    ErrorKind = "enrichment_failed"
	KindNotAuthenticated    ErrorKind = "not_authenticated"
	KindPermissionDenied    ErrorKind = "permission_denied"
	KindIndexMissing        ErrorKind = "index_missing"
	KindInvalidCredentials  ErrorKind = "invalid_credentials"
	KindEmailAlreadyInUse   ErrorKind = "email_already_in_use"
	KindWeakPassword        ErrorKind = "weak_password"
	KindConfiguration       ErrorKind = "configuration_error"
)

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrNotFound, KindNotFound},
	{ErrValidation, KindValidation},
	{ErrBusy, KindBusy},
	{ErrMissingCredential, KindMissingCredential},
	{ErrInvalidCredential, KindInvalidCredential},
	{ErrMalformedResponse, KindMalformedResponse},
	{ErrProviderUnavailable, KindProviderUnavailable},
	{ErrEnrichmentFailed, KindEnrichmentFailed},
	{ErrNotAuthenticated, KindNotAuthenticated},
	{ErrPermissionDenied, KindPermissionDenied},
	{ErrIndexMissing, KindIndexMissing},
	{ErrInvalidCredentials, KindInvalidCredentials},
	{ErrEmailAlreadyInUse, KindEmailAlreadyInUse},
	{ErrWeakPassword, KindWeakPassword},
	{ErrConfiguration, KindConfiguration},
}

// KindOf classifies err against the sentinel errors above.
// It returns KindNone for a nil error and KindUnknown when nothing matches.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
