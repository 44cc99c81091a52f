package backoffice_integration_utils

// Stored in redis as a hash set with the field being the per-table storage
// key and the value being the serialized ListParams
var ListStateRedis = "list-state"

// Key the current panel session is persisted under when no explicit
// SESSION_KEY is configured
var SessionRedis = "backoffice-session"
