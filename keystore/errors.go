package keystore

import "errors"

// Keystore errors.
var (
	// ErrCorruptStore indicates the credential file could not be
	// decrypted or decoded, usually because the passphrase changed or
	// the file was damaged.
	ErrCorruptStore = errors.New("credential store corrupt or wrong passphrase")
)
