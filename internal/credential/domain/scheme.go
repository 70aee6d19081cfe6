package domain

// Scheme hashes and verifies passwords in one self-describing format.
type Scheme interface {
	// Name is the policy name of the scheme.
	Name() string

	// Identify reports whether hash was produced by this scheme.
	Identify(hash string) bool

	// Hash returns a new encoded hash of plain.
	Hash(plain string) (string, error)

	// Verify compares plain against hash in constant time.
	Verify(hash, plain string) (bool, error)

	// NeedsUpdate reports whether hash was produced with weaker parameters than the scheme's current ones.
	NeedsUpdate(hash string) bool
}

// VerifyResult is the outcome of checking a password. NewHash is set when the stored hash
// matched but should be replaced; persisting it is left to the caller.
type VerifyResult struct {
	Matched bool
	NewHash string
}

// NeedsRehash reports whether the caller should store NewHash.
func (r VerifyResult) NeedsRehash() bool {
	return r.NewHash != ""
}
