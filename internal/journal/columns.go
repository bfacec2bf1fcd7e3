package journal

// Canonical column names of the identity session tables.
const (
	ColumnSessionID     = "SESSION_ID"
	ColumnSessionType   = "SESSION_TYPE"
	ColumnSessionObject = "SESSION_OBJECT"
	ColumnTimeCreated   = "TIME_CREATED"
	ColumnTenantID      = "TENANT_ID"
	ColumnExpiryTime    = "EXPIRY_TIME"
)
