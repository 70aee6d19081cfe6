package app

import (
	"fmt"

	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	authHTTP "github.com/allisson/authserver/internal/auth/http"
	authRepository "github.com/allisson/authserver/internal/auth/repository"
	authService "github.com/allisson/authserver/internal/auth/service"
	authUseCase "github.com/allisson/authserver/internal/auth/usecase"
	credentialService "github.com/allisson/authserver/internal/credential/service"
	customValidation "github.com/allisson/authserver/internal/validation"
)

// PasswordHasher returns the password hasher built from the configured hashing policy.
func (c *Container) PasswordHasher() (credentialService.PasswordHasher, error) {
	var err error
	c.passwordHasherInit.Do(func() {
		c.passwordHasher, err = credentialService.NewPasswordHasher(credentialService.Options{
			PolicyTOML: c.config.PasswordPolicy,
			PolicyPath: c.config.PasswordPolicyPath,
		})
		if err != nil {
			c.initErrors["passwordHasher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["passwordHasher"]; exists {
		return nil, storedErr
	}
	return c.passwordHasher, nil
}

// TokenSigner returns the RS256 token signer.
func (c *Container) TokenSigner() authService.TokenSigner {
	c.tokenSignerInit.Do(func() {
		c.tokenSigner = authService.NewTokenSigner()
	})
	return c.tokenSigner
}

// UserRepository returns the user repository based on database driver.
func (c *Container) UserRepository() (authUseCase.UserRepository, error) {
	var err error
	c.userRepositoryInit.Do(func() {
		c.userRepository, err = c.initUserRepository()
		if err != nil {
			c.initErrors["userRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userRepository"]; exists {
		return nil, storedErr
	}
	return c.userRepository, nil
}

// AuditEventRepository returns the audit event repository based on database driver.
func (c *Container) AuditEventRepository() (authUseCase.AuditEventRepository, error) {
	var err error
	c.auditEventRepositoryInit.Do(func() {
		c.auditEventRepository, err = c.initAuditEventRepository()
		if err != nil {
			c.initErrors["auditEventRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditEventRepository"]; exists {
		return nil, storedErr
	}
	return c.auditEventRepository, nil
}

// LoginUseCase returns the password login use case.
func (c *Container) LoginUseCase() (authUseCase.LoginUseCase, error) {
	var err error
	c.loginUseCaseInit.Do(func() {
		c.loginUseCase, err = c.initLoginUseCase()
		if err != nil {
			c.initErrors["loginUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["loginUseCase"]; exists {
		return nil, storedErr
	}
	return c.loginUseCase, nil
}

// UserUseCase returns the user management use case.
func (c *Container) UserUseCase() (authUseCase.UserUseCase, error) {
	var err error
	c.userUseCaseInit.Do(func() {
		c.userUseCase, err = c.initUserUseCase()
		if err != nil {
			c.initErrors["userUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userUseCase"]; exists {
		return nil, storedErr
	}
	return c.userUseCase, nil
}

// AuditEventUseCase returns the audit event use case.
func (c *Container) AuditEventUseCase() (authUseCase.AuditEventUseCase, error) {
	var err error
	c.auditEventUseCaseInit.Do(func() {
		c.auditEventUseCase, err = c.initAuditEventUseCase()
		if err != nil {
			c.initErrors["auditEventUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditEventUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditEventUseCase, nil
}

// LoginHandler returns the login HTTP handler.
func (c *Container) LoginHandler() (*authHTTP.LoginHandler, error) {
	var err error
	c.loginHandlerInit.Do(func() {
		c.loginHandler, err = c.initLoginHandler()
		if err != nil {
			c.initErrors["loginHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["loginHandler"]; exists {
		return nil, storedErr
	}
	return c.loginHandler, nil
}

// UserHandler returns the user administration HTTP handler.
func (c *Container) UserHandler() (*authHTTP.UserHandler, error) {
	var err error
	c.userHandlerInit.Do(func() {
		c.userHandler, err = c.initUserHandler()
		if err != nil {
			c.initErrors["userHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userHandler"]; exists {
		return nil, storedErr
	}
	return c.userHandler, nil
}

// PasswordRules returns the requirements new passwords must meet.
func (c *Container) PasswordRules() []validation.Rule {
	rules := []validation.Rule{validation.Length(8, 128)}

	if c.config.PasswordSpecialCharacters != "" {
		rules = append(rules, customValidation.LettersDigitsSpecialCharacters{
			SpecialCharacters: c.config.PasswordSpecialCharacters,
		})
	} else {
		rules = append(rules, customValidation.LettersDigits{})
	}

	if c.config.PasswordCheckPwned {
		rules = append(rules, customValidation.NewNotPwned())
	}

	return rules
}

// LoginConfig maps configuration onto the login flow settings.
func (c *Container) LoginConfig() authDomain.LoginConfig {
	loginConfig := authDomain.DefaultLoginConfig()
	loginConfig.Issuer = c.config.JWTIssuer
	loginConfig.Audience = c.config.JWTAudience
	loginConfig.TokenLifetime = c.config.JWTLifetime
	loginConfig.UsernameField = c.config.LoginUsernameField
	loginConfig.PasswordField = c.config.LoginPasswordField
	loginConfig.ClaimFields = c.config.LoginClaimFields
	loginConfig.Audit = c.config.AuditEnabled
	loginConfig.AccountLockout = c.config.AccountLockoutEnabled
	loginConfig.LockoutThreshold = c.config.LockoutMaxAttempts
	loginConfig.LockoutWindow = c.config.LockoutWindow
	loginConfig.MultiTenant = c.config.MultiTenantEnabled
	return loginConfig
}

// initUserRepository creates the user repository based on the database driver.
func (c *Container) initUserRepository() (authUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initAuditEventRepository creates the audit event repository based on the database driver.
func (c *Container) initAuditEventRepository() (authUseCase.AuditEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLAuditEventRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLAuditEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initLoginUseCase creates the login use case, wrapped with metrics when enabled.
func (c *Container) initLoginUseCase() (authUseCase.LoginUseCase, error) {
	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for login use case: %w", err)
	}

	auditEventRepository, err := c.AuditEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event repository for login use case: %w", err)
	}

	keyUseCase, err := c.KeyUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key use case for login use case: %w", err)
	}

	hasher, err := c.PasswordHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get password hasher for login use case: %w", err)
	}

	baseUseCase, err := authUseCase.NewLoginUseCase(
		c.LoginConfig(),
		authDomain.DefaultFieldSet(),
		userRepository,
		auditEventRepository,
		keyUseCase,
		hasher,
		c.TokenSigner(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login use case: %w", err)
	}

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for login use case: %w", err)
		}
		return authUseCase.NewLoginUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initUserUseCase creates the user use case, wrapped with metrics when enabled.
func (c *Container) initUserUseCase() (authUseCase.UserUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for user use case: %w", err)
	}

	userRepository, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	auditEventRepository, err := c.AuditEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event repository for user use case: %w", err)
	}

	hasher, err := c.PasswordHasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get password hasher for user use case: %w", err)
	}

	baseUseCase := authUseCase.NewUserUseCase(
		txManager,
		userRepository,
		auditEventRepository,
		hasher,
		c.PasswordRules(),
		c.config.AuditEnabled,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for user use case: %w", err)
		}
		return authUseCase.NewUserUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuditEventUseCase creates the audit event use case, wrapped with metrics when enabled.
func (c *Container) initAuditEventUseCase() (authUseCase.AuditEventUseCase, error) {
	auditEventRepository, err := c.AuditEventRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event repository for audit event use case: %w", err)
	}

	baseUseCase := authUseCase.NewAuditEventUseCase(auditEventRepository)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit event use case: %w", err)
		}
		return authUseCase.NewAuditEventUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initLoginHandler creates the login HTTP handler.
func (c *Container) initLoginHandler() (*authHTTP.LoginHandler, error) {
	loginUseCase, err := c.LoginUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get login use case for login handler: %w", err)
	}
	return authHTTP.NewLoginHandler(loginUseCase, c.Logger()), nil
}

// initUserHandler creates the user HTTP handler.
func (c *Container) initUserHandler() (*authHTTP.UserHandler, error) {
	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for user handler: %w", err)
	}

	auditEventUseCase, err := c.AuditEventUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit event use case for user handler: %w", err)
	}

	return authHTTP.NewUserHandler(userUseCase, auditEventUseCase, c.Logger()), nil
}
