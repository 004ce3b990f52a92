package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// refreshTokenBytes gives 64 hex characters per refresh token.
const refreshTokenBytes = 32

// LocalProvider keeps accounts in the users table and issues its own tokens:
// short-lived HS256 access tokens and opaque refresh tokens stored in
// refresh_tokens, rotated on every refresh.
type LocalProvider struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

// NewLocalProvider constructs a LocalProvider. db may be nil with a memory
// repository manager.
func NewLocalProvider(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *LocalProvider {
	p := &LocalProvider{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   bcrypt.DefaultCost,
	}
	p.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("notekeeper"), p.bcryptCost)
	return p
}

func (p *LocalProvider) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := validateRegistration(email, password)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.bcryptCost)
	if err != nil {
		return nil, internal(err)
	}

	var result *AuthResult
	if err := p.repomanager.WithTx(ctx, p.db, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := p.repomanager.Users(tx).Create(ctx, &models.User{Email: email, PasswordHash: string(hash)})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return ErrEmailTaken
			}
			return internal(err)
		}
		session, err := p.issueSession(ctx, user, tx)
		if err != nil {
			return err
		}
		result = &AuthResult{User: identityOf(user), Session: session}
		return nil
	}); err != nil {
		if !errors.Is(err, common.ErrorInternal) && !errors.Is(err, ErrEmailTaken) {
			return nil, internal(err)
		}
		return nil, err
	}
	return result, nil
}

func (p *LocalProvider) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := p.repomanager.Users(p.db).GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(p.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, internal(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := p.issueSession(ctx, user, p.db)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: identityOf(user), Session: session}, nil
}

// Verify checks the signature and expiry of an access token and that its
// user still exists.
func (p *LocalProvider) Verify(ctx context.Context, token string) (*Identity, error) {
	claims, err := ParseToken(token, p.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := p.repomanager.Users(p.db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, internal(err)
	}

	id := identityOf(user)
	return &id, nil
}

// Refresh validates a refresh token, rotates it transactionally and returns
// a fresh session. Expired tokens yield common.ErrRefreshTokenExpired.
func (p *LocalProvider) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	repo := p.repomanager.RefreshTokens(p.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, internal(err)
	}
	if token.Expired(time.Now()) {
		_ = repo.Consume(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	var result *AuthResult
	if err := p.repomanager.WithTx(ctx, p.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := p.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return internal(err)
		}
		user, err := p.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return internal(err)
		}
		session, err := p.issueSession(ctx, user, tx)
		if err != nil {
			return err
		}
		result = &AuthResult{User: identityOf(user), Session: session}
		return nil
	}); err != nil {
		if !errors.Is(err, common.ErrorInternal) && !errors.Is(err, common.ErrInvalidToken) {
			return nil, internal(err)
		}
		return nil, err
	}
	return result, nil
}

// Logout revokes every refresh token of the access token's user. Expired
// access tokens are accepted; a token that does not parse has nothing to
// revoke.
func (p *LocalProvider) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}

	claims, err := ParseToken(accessToken, p.jwtSecret, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}

	if _, err := p.repomanager.RefreshTokens(p.db).DeleteByUser(ctx, claims.Subject); err != nil {
		return internal(err)
	}
	return nil
}

func (p *LocalProvider) issueSession(ctx context.Context, user *models.User, tx dbx.DBTX) (*Session, error) {
	access, expiresAt, err := GenerateToken(user.ID, user.Email, p.jwtSecret, p.accessTokenValidityDuration)
	if err != nil {
		return nil, internal(err)
	}
	refresh, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, internal(err)
	}
	if err := p.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, p.refreshTokenValidityDuration); err != nil {
		return nil, internal(err)
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(p.accessTokenValidityDuration.Seconds()),
		ExpiresAt:    expiresAt.Unix(),
	}, nil
}

func identityOf(u *models.User) Identity {
	return Identity{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}
