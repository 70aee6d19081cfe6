package domain

// LoginInput is a login request. Body is the decoded JSON object. TenantID comes from the
// route and is ignored unless the deployment is multi-tenant.
type LoginInput struct {
	Body     map[string]any
	TenantID string
}

// LoginOutput is a signed token and its expiry as a Unix timestamp.
type LoginOutput struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
