package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	keysDomain "github.com/allisson/authserver/internal/keys/domain"
	keysHTTP "github.com/allisson/authserver/internal/keys/http"
	keysRepository "github.com/allisson/authserver/internal/keys/repository"
	keysService "github.com/allisson/authserver/internal/keys/service"
	keysUseCase "github.com/allisson/authserver/internal/keys/usecase"
	"github.com/allisson/authserver/internal/secretstore"
)

// KeyStore returns the secret store holding the key documents. When a keeper URL is
// configured, the private key document is encrypted at rest.
func (c *Container) KeyStore() (secretstore.Store, error) {
	var err error
	c.keyStoreInit.Do(func() {
		c.keyStore, err = c.initKeyStore()
		if err != nil {
			c.initErrors["keyStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyStore"]; exists {
		return nil, storedErr
	}
	return c.keyStore, nil
}

// KeyService returns the RSA key generation service.
func (c *Container) KeyService() keysService.KeyService {
	c.keyServiceInit.Do(func() {
		c.keyService = keysService.NewKeyService(c.config.KeyAlgorithm, c.config.KeySize)
	})
	return c.keyService
}

// KeyDocumentRepository returns the key document repository.
func (c *Container) KeyDocumentRepository() (keysUseCase.KeyDocumentRepository, error) {
	var err error
	c.keyDocumentRepositoryInit.Do(func() {
		c.keyDocumentRepository, err = c.initKeyDocumentRepository()
		if err != nil {
			c.initErrors["keyDocumentRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyDocumentRepository"]; exists {
		return nil, storedErr
	}
	return c.keyDocumentRepository, nil
}

// KeyUseCase returns the key registry use case.
func (c *Container) KeyUseCase() (keysUseCase.KeyUseCase, error) {
	var err error
	c.keyUseCaseInit.Do(func() {
		c.keyUseCase, err = c.initKeyUseCase()
		if err != nil {
			c.initErrors["keyUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyUseCase"]; exists {
		return nil, storedErr
	}
	return c.keyUseCase, nil
}

// KeyHandler returns the HTTP handler for signing keys and the JWKS.
func (c *Container) KeyHandler() (*keysHTTP.KeyHandler, error) {
	var err error
	c.keyHandlerInit.Do(func() {
		c.keyHandler, err = c.initKeyHandler()
		if err != nil {
			c.initErrors["keyHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyHandler"]; exists {
		return nil, storedErr
	}
	return c.keyHandler, nil
}

// initKeyStore opens the bucket and, optionally, the keeper wrapping the private document.
func (c *Container) initKeyStore() (secretstore.Store, error) {
	ctx := context.Background()

	blobStore, err := secretstore.OpenBlobStore(ctx, c.config.KeyStoreURL)
	if err != nil {
		return nil, err
	}
	c.blobStore = blobStore

	if c.config.KeyStoreKeeperURL == "" {
		return blobStore, nil
	}

	keeper, err := secretstore.OpenKeeper(ctx, c.config.KeyStoreKeeperURL)
	if err != nil {
		return nil, err
	}
	c.keeper = keeper

	// base64key:// URLs carry the key itself; log the scheme only.
	c.Logger().Info("private key document is encrypted at rest",
		slog.String("keeper_scheme", keeperScheme(c.config.KeyStoreKeeperURL)))

	return secretstore.NewEncryptedStore(blobStore, keeper, c.config.PrivateKeysPath), nil
}

// initKeyDocumentRepository creates the repository over the key store.
func (c *Container) initKeyDocumentRepository() (keysUseCase.KeyDocumentRepository, error) {
	store, err := c.KeyStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get key store for key document repository: %w", err)
	}
	return keysRepository.NewSecretStoreKeyDocumentRepository(store), nil
}

// initKeyUseCase creates the key use case, wrapped with metrics when enabled.
func (c *Container) initKeyUseCase() (keysUseCase.KeyUseCase, error) {
	repo, err := c.KeyDocumentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key document repository for key use case: %w", err)
	}

	baseUseCase, err := keysUseCase.NewKeyUseCase(
		keysDomain.KeyConfig{
			PrivateKeysPath: c.config.PrivateKeysPath,
			PublicKeysPath:  c.config.PublicKeysPath,
			Algorithm:       c.config.KeyAlgorithm,
			KeyType:         c.config.KeyType,
			KeySize:         c.config.KeySize,
		},
		repo,
		c.KeyService(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create key use case: %w", err)
	}

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key use case: %w", err)
		}
		return keysUseCase.NewKeyUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initKeyHandler creates the key HTTP handler.
func (c *Container) initKeyHandler() (*keysHTTP.KeyHandler, error) {
	keyUseCase, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for key handler: %w", err)
	}
	return keysHTTP.NewKeyHandler(keyUseCase, c.Logger()), nil
}

// keeperScheme returns the scheme of a keeper URL without the rest of it.
func keeperScheme(keeperURL string) string {
	parsed, err := url.Parse(keeperURL)
	if err != nil {
		return "invalid"
	}
	return parsed.Scheme
}
