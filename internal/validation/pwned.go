package validation

import (
	"bufio"
	"crypto/sha1" //nolint:gosec // required by the k-anonymity range API
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	validation "github.com/jellydator/validation"
)

// DefaultPwnedPasswordsURL is the Have I Been Pwned range endpoint.
const DefaultPwnedPasswordsURL = "https://api.pwnedpasswords.com/range/"

// NotPwned rejects passwords that appear in the Have I Been Pwned corpus. Only the first
// five characters of the SHA-1 digest leave the process.
type NotPwned struct {
	Client  *http.Client
	BaseURL string
}

// NewNotPwned creates a NotPwned rule against the public API.
func NewNotPwned() *NotPwned {
	return &NotPwned{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: DefaultPwnedPasswordsURL,
	}
}

// Validate implements validation.Rule.
func (n *NotPwned) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_type", "password must be a string")
	}
	if s == "" {
		return nil
	}

	sum := sha1.Sum([]byte(s)) //nolint:gosec
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	resp, err := n.Client.Get(n.BaseURL + prefix)
	if err != nil {
		return validation.NewInternalError(fmt.Errorf("failed to query pwned passwords: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return validation.NewInternalError(
			fmt.Errorf("pwned passwords returned unexpected status %d", resp.StatusCode),
		)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		candidate, count, found := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !found || !strings.EqualFold(candidate, suffix) {
			continue
		}
		if strings.TrimSpace(count) == "0" {
			// padded responses use zero counts
			return nil
		}
		return validation.NewError(
			"validation_password_pwned",
			"this password has appeared in a data breach and cannot be used",
		)
	}
	if err := scanner.Err(); err != nil {
		return validation.NewInternalError(fmt.Errorf("failed to read pwned passwords response: %w", err))
	}

	return nil
}
