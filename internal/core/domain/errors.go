package domain

import "errors"

// Chat error taxonomy. Connection admission failures terminate the
// connection; send-path failures are recoverable — the message is dropped
// and the connection stays open.
var ErrMissingCredential = errors.New("no credential provided")
var ErrInvalidCredential = errors.New("invalid credential")
var ErrInvalidPayload = errors.New("invalid message payload")
var ErrUnauthenticated = errors.New("sender not authenticated")
var ErrStoreUnavailable = errors.New("message store unavailable")
var ErrDuplicateMessage = errors.New("duplicate message")

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrListingNotFound = errors.New("listing not found")
