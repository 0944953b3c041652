package http

// Request/response payloads for the auth endpoints. Note verifyRequest
// carries only the code: any extra field a client adds to the body is
// discarded during decoding and can never reach the verification decision.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	MFARequired bool   `json:"mfa_required"` // always true on success
	ExpiresIn   int    `json:"expires_in"`   // seconds until the code expires
	Message     string `json:"message"`
}

type verifyRequest struct {
	Code string `json:"code"`
}

type verifyResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

type resendResponse struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
}

type sessionResponse struct {
	State        string `json:"state"`
	Role         string `json:"role,omitempty"`
	Redirect     string `json:"redirect,omitempty"`
	TTLRemaining int    `json:"ttl_remaining,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *healthChecks `json:"checks,omitempty"`
}

type healthChecks struct {
	Database string `json:"database"`
}
