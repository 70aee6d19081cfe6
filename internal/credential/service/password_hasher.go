package service

import (
	"github.com/BurntSushi/toml"

	credentialDomain "github.com/allisson/authserver/internal/credential/domain"
	apperrors "github.com/allisson/authserver/internal/errors"
)

// Options selects where the hashing policy comes from. At most one field may be set;
// none yields credentialDomain.DefaultPolicy.
type Options struct {
	Policy     *credentialDomain.Policy
	PolicyTOML string
	PolicyPath string
}

type passwordHasher struct {
	schemes    []credentialDomain.Scheme
	deprecated map[string]bool
}

// NewPasswordHasher resolves the policy described by opts and builds a PasswordHasher.
// Invalid options fail with ErrConfiguration.
func NewPasswordHasher(opts Options) (PasswordHasher, error) {
	policy, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	return NewPasswordHasherFromPolicy(policy)
}

// NewPasswordHasherFromPolicy builds a PasswordHasher for policy.
func NewPasswordHasherFromPolicy(policy credentialDomain.Policy) (PasswordHasher, error) {
	policy = policy.WithDefaults()
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	h := &passwordHasher{deprecated: make(map[string]bool)}
	for _, name := range policy.Schemes {
		scheme, err := newScheme(name, policy)
		if err != nil {
			return nil, apperrors.Configurationf("%s", err.Error())
		}
		h.schemes = append(h.schemes, scheme)
	}
	for _, name := range policy.DeprecatedSchemes() {
		h.deprecated[name] = true
	}
	return h, nil
}

func (o Options) resolve() (credentialDomain.Policy, error) {
	set := 0
	for _, isSet := range []bool{o.Policy != nil, o.PolicyTOML != "", o.PolicyPath != ""} {
		if isSet {
			set++
		}
	}
	if set > 1 {
		return credentialDomain.Policy{}, apperrors.Configurationf(
			"only one of an inline password policy, a policy string or a policy file may be set",
		)
	}

	var policy credentialDomain.Policy
	switch {
	case o.Policy != nil:
		policy = *o.Policy
	case o.PolicyTOML != "":
		if _, err := toml.Decode(o.PolicyTOML, &policy); err != nil {
			return credentialDomain.Policy{}, apperrors.Configurationf("invalid password policy: %s", err.Error())
		}
	case o.PolicyPath != "":
		if _, err := toml.DecodeFile(o.PolicyPath, &policy); err != nil {
			return credentialDomain.Policy{}, apperrors.Configurationf(
				"invalid password policy file '%s': %s",
				o.PolicyPath,
				err.Error(),
			)
		}
	default:
		policy = credentialDomain.DefaultPolicy()
	}
	return policy, nil
}

func (h *passwordHasher) Hash(plain string) (string, error) {
	hash, err := h.schemes[0].Hash(plain)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

func (h *passwordHasher) Verify(stored, candidate string) (credentialDomain.VerifyResult, error) {
	if stored == "" {
		return credentialDomain.VerifyResult{}, nil
	}

	scheme := h.identify(stored)
	if scheme == nil {
		return credentialDomain.VerifyResult{}, nil
	}

	ok, err := scheme.Verify(stored, candidate)
	if err != nil || !ok {
		// Malformed hashes are treated as a mismatch.
		return credentialDomain.VerifyResult{}, nil
	}

	result := credentialDomain.VerifyResult{Matched: true}
	if h.deprecated[scheme.Name()] || scheme.NeedsUpdate(stored) {
		newHash, err := h.Hash(candidate)
		if err != nil {
			return credentialDomain.VerifyResult{}, err
		}
		result.NewHash = newHash
	}
	return result, nil
}

func (h *passwordHasher) identify(stored string) credentialDomain.Scheme {
	for _, scheme := range h.schemes {
		if scheme.Identify(stored) {
			return scheme
		}
	}
	return nil
}
