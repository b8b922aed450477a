package ports

// Identity is the claim resolved from a bearer credential. Subject is the
// user's email, matching the `sub` claim of the issued tokens.
type Identity struct {
	Subject string
}

// TokenVerifier validates an opaque bearer credential. Implementations are
// stateless and side-effect free; every failure path returns one of the
// domain credential errors rather than panicking.
type TokenVerifier interface {
	Verify(credential string) (Identity, error)
}
