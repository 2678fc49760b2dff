package keystore

// Well-known credential accounts.
const (
	AccountAuthToken = "auth_token"
	AccountUserEmail = "user_email"
	AccountBYOKKey   = "openai_api_key"
)

// Store is durable key/value storage keyed by logical account name.
type Store interface {
	// Set atomically overwrites any prior value for the account.
	Set(account, value string) error

	// Get returns the stored value. The second return is false when no
	// value exists for the account; absence is never an error.
	Get(account string) (string, bool)

	// Delete removes the account's value. Deleting an absent account is
	// a no-op, not an error.
	Delete(account string) error
}
