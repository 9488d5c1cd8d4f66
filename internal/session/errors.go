package session

import "errors"

var (
	// ErrSessionBusy is logged when a connection arrives while another session holds the slot
	ErrSessionBusy = errors.New("session already active")

	// ErrAuthTimeout is logged when no frame arrives within the auth timeout
	ErrAuthTimeout = errors.New("authentication timed out")

	// ErrAuthFailed is logged when the client presents the wrong credential
	ErrAuthFailed = errors.New("authentication failed")

	// ErrAuthRequired is logged when the first frame is not AUTH:
	ErrAuthRequired = errors.New("authentication required")

	// ErrEmptyCredential is returned by SetCredential for a blank secret
	ErrEmptyCredential = errors.New("credential must not be empty")

	// ErrCredentialNotSaved is returned by SetCredential when the new secret
	// is in effect but OnCredentialChange failed
	ErrCredentialNotSaved = errors.New("credential applied but not saved")

	// ErrShuttingDown is logged for connections arriving after Shutdown
	ErrShuttingDown = errors.New("server shutting down")

	// ErrDisconnected is logged when an operator ends the session
	ErrDisconnected = errors.New("disconnected by operator")
)
