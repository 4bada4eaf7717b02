package common

const (
	// AccountKeyPrefix prefixes every account record key in the store.
	AccountKeyPrefix = "user_"

	// RememberEmailKey is the device-wide slot holding the last remembered email.
	RememberEmailKey = "patrimonio_pro_remember_email"
)
