package service

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/jwk"

	keysDomain "github.com/allisson/authserver/internal/keys/domain"
)

type jwkKeyService struct {
	algorithm string
	keySize   int
}

// NewKeyService creates a KeyService generating RSA keys of keySize bits labelled with algorithm.
// The configuration is expected to be validated by keysDomain.KeyConfig.
func NewKeyService(algorithm string, keySize int) KeyService {
	return &jwkKeyService{algorithm: algorithm, keySize: keySize}
}

func (s *jwkKeyService) Generate(
	keyID string,
	issuedAt time.Time,
) (keysDomain.Record, keysDomain.Record, error) {
	raw, err := rsa.GenerateKey(rand.Reader, s.keySize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate rsa key: %w", err)
	}

	key, err := jwk.New(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build jwk: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, nil, fmt.Errorf("failed to set key id: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, s.algorithm); err != nil {
		return nil, nil, fmt.Errorf("failed to set algorithm: %w", err)
	}
	if err := key.Set(jwk.KeyUsageKey, keysDomain.KeyUseSignature); err != nil {
		return nil, nil, fmt.Errorf("failed to set key usage: %w", err)
	}

	public, err := jwk.PublicKeyOf(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to derive public jwk: %w", err)
	}

	privateRecord, err := toRecord(key)
	if err != nil {
		return nil, nil, err
	}
	publicRecord, err := toRecord(public)
	if err != nil {
		return nil, nil, err
	}

	stamp := issuedAt.UTC().Format(time.RFC3339Nano)
	privateRecord[keysDomain.FieldIssuedAt] = stamp
	publicRecord[keysDomain.FieldIssuedAt] = stamp

	return privateRecord, publicRecord, nil
}

func (s *jwkKeyService) PrivateKey(record keysDomain.Record) (*rsa.PrivateKey, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode key record: %w", err)
	}

	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwk: %w", err)
	}

	var privateKey rsa.PrivateKey
	if err := key.Raw(&privateKey); err != nil {
		return nil, fmt.Errorf("key %q is not an rsa private key: %w", record.String(keysDomain.FieldKeyID), err)
	}
	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("key %q is invalid: %w", record.String(keysDomain.FieldKeyID), err)
	}
	privateKey.Precompute()
	return &privateKey, nil
}

func toRecord(key jwk.Key) (keysDomain.Record, error) {
	data, err := json.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jwk: %w", err)
	}
	var record keysDomain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode jwk: %w", err)
	}
	return record, nil
}
