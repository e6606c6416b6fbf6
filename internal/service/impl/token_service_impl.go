package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"voting/internal/domain"
	"voting/internal/dto"
	"voting/internal/jwtsigner"
	"voting/internal/observability/metrics"
	"voting/internal/observability/middleware"
	"voting/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"

	maxUserAgentLen = 512
)

type TokenConfig struct {
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AccessClaims struct {
	SID string `json:"sid"`
	Use string `json:"use"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	SID string `json:"sid"`
	Use string `json:"use"`
	jwt.RegisteredClaims // jti == refresh_id
}

type TokenServiceImpl struct {
	cfg    TokenConfig
	signer *jwtsigner.Signer
	store  *store.Store
	now    func() time.Time
}

func NewTokenService(cfg TokenConfig, signer *jwtsigner.Signer, st *store.Store) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg, signer: signer, store: st, now: time.Now}
}

// Issue creates an auth session row with a fresh refresh id and returns the
// access and refresh tokens bound to it.
func (t *TokenServiceImpl) Issue(ctx context.Context, user *domain.User, ip, ua string) (*dto.TokenResponse, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("issue", result).Inc()
	}()
	now := t.now().UTC()

	sess := &domain.AuthSession{
		ID:        uuid.New(),
		UserID:    user.ID,
		RefreshID: uuid.New(),
		ExpiresAt: now.Add(t.cfg.RefreshTTL),
		CreatedAt: now,
		IP:        normalizeIP(ip),
		UserAgent: truncateUserAgent(ua),
	}
	if err := t.store.Sessions().Create(ctx, sess); err != nil {
		result = "failure"
		return nil, fmt.Errorf("create auth session: %w", err)
	}

	out, err := t.mint(sess, now)
	if err != nil {
		result = "failure"
		return nil, err
	}

	slog.Info("issued tokens", append([]any{"session_id", sess.ID, "user_id", user.ID}, middleware.LogAttrs(ctx)...)...)
	return out, nil
}

// Refresh redeems a refresh token once: the session's refresh id is rotated
// so the presented token stops working.
func (t *TokenServiceImpl) Refresh(ctx context.Context, refreshToken string, ip, ua string) (*dto.TokenResponse, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues("refresh", result).Inc()
	}()
	now := t.now().UTC()

	claims := &RefreshClaims{}
	if err := t.parse(refreshToken, claims, tokenUseRefresh, &claims.RegisteredClaims, &claims.Use); err != nil {
		result = "failure"
		return nil, domain.Unauthenticated(msgInvalidToken)
	}
	rid, err := uuid.Parse(claims.ID)
	if err != nil {
		result = "failure"
		return nil, domain.Unauthenticated(msgInvalidToken)
	}

	sess, err := t.store.Sessions().GetByRefreshID(ctx, rid)
	if err != nil {
		result = "failure"
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domain.Unauthenticated(msgInvalidToken)
		}
		return nil, err
	}
	if sess.RevokedAt != nil || !now.Before(sess.ExpiresAt) {
		result = "failure"
		return nil, domain.Unauthenticated("session expired or revoked")
	}

	user, err := t.store.Users().GetByID(ctx, sess.UserID)
	if err != nil || !user.IsActive {
		result = "failure"
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			return nil, err
		}
		return nil, domain.Unauthenticated(msgInvalidToken)
	}

	newRID := uuid.New()
	newExp := now.Add(t.cfg.RefreshTTL)
	ip, ua = normalizeIP(ip), truncateUserAgent(ua)
	rotated, err := t.store.Sessions().Rotate(ctx, sess.ID, rid, newRID, newExp, ip, ua)
	if err != nil {
		result = "failure"
		return nil, fmt.Errorf("rotate auth session: %w", err)
	}
	if !rotated {
		result = "failure"
		return nil, domain.Unauthenticated(msgInvalidToken)
	}
	sess.RefreshID = newRID
	sess.ExpiresAt = newExp

	out, err := t.mint(sess, now)
	if err != nil {
		result = "failure"
		return nil, err
	}

	slog.Info("refreshed tokens", append([]any{"session_id", sess.ID, "user_id", sess.UserID}, middleware.LogAttrs(ctx)...)...)
	return out, nil
}

func (t *TokenServiceImpl) Verify(ctx context.Context, accessToken string) (uint, error) {
	claims := &AccessClaims{}
	if err := t.parse(accessToken, claims, tokenUseAccess, &claims.RegisteredClaims, &claims.Use); err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, jwtsigner.ErrInvalidToken
	}
	return uint(id), nil
}

func (t *TokenServiceImpl) JWKs() []map[string]any { return t.signer.PublicJWKs() }

func (t *TokenServiceImpl) mint(sess *domain.AuthSession, now time.Time) (*dto.TokenResponse, error) {
	subject := strconv.FormatUint(uint64(sess.UserID), 10)

	access, err := t.signer.Sign(AccessClaims{
		SID: sess.ID.String(),
		Use: tokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.signer.Issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := t.signer.Sign(RefreshClaims{
		SID: sess.ID.String(),
		Use: tokenUseRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.signer.Issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        sess.RefreshID.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &dto.TokenResponse{
		Token:     access,
		Refresh:   refresh,
		ExpiresIn: int64(t.cfg.AccessTTL.Seconds()),
	}, nil
}

func (t *TokenServiceImpl) parse(tokenStr string, claims jwt.Claims, wantUse string, reg *jwt.RegisteredClaims, use *string) error {
	if err := t.signer.Parse(tokenStr, claims); err != nil {
		return err
	}
	if *use != wantUse {
		return fmt.Errorf("%w: token use %q", jwtsigner.ErrInvalidToken, *use)
	}
	if !containsAudience(reg.Audience, t.cfg.Audience) {
		return fmt.Errorf("%w: bad audience", jwtsigner.ErrInvalidToken)
	}
	return nil
}

func containsAudience(aud jwt.ClaimStrings, expected string) bool {
	for _, a := range aud {
		if a == expected {
			return true
		}
	}
	return false
}

func normalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if parsed := net.ParseIP(ip); parsed != nil {
		return parsed.String()
	}
	return ip
}

func truncateUserAgent(ua string) string {
	ua = strings.TrimSpace(ua)
	if len(ua) > maxUserAgentLen {
		return ua[:maxUserAgentLen]
	}
	return ua
}
