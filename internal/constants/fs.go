package constants

import "os"

const (
	// DefaultFilePermissions sets the default permissions for regular files: (rw-r--r--).
	// Owner: read and write;
	// Group: read;
	// Others: read.
	DefaultFilePermissions os.FileMode = 0o644

	// PrivateFilePermissions sets the permissions for files holding secrets: (rw-------).
	// Cached tokens are stored in plaintext, so only the owner may read them.
	PrivateFilePermissions os.FileMode = 0o600

	// PrivateFolderPermissions sets the permissions for folders holding secrets: (rwx------).
	PrivateFolderPermissions os.FileMode = 0o700
)

// File extension constants.
const (
	// ExtensionTokenRecord is the extension of a cached token record.
	ExtensionTokenRecord = ".txt"
)
