package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ChantikaAurora/e-arsip-microservices-uas/internal/userservice/ports"
)

// JWTSigner issues and validates RS256 bearer tokens.
type JWTSigner struct {
	privateKey *rsa.PrivateKey
	keyID      string
	issuer     string
}

// NewJWTSigner parses a PEM-encoded RSA private key. An empty key generates
// an ephemeral one so local development works without provisioning; tokens
// then do not survive a restart.
func NewJWTSigner(privateKeyPEM, issuer string) (*JWTSigner, error) {
	if privateKeyPEM == "" {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, fmt.Errorf("generate ephemeral key: %w", err)
		}
		slog.Warn("no signing key configured, using ephemeral key",
			"service", "user-service", "layer", "security")
		return &JWTSigner{privateKey: key, keyID: uuid.NewString(), issuer: issuer}, nil
	}

	block, _ := pem.Decode([]byte(privateKeyPEM))
	if block == nil {
		return nil, errors.New("signing key is not valid PEM")
	}

	var key *rsa.PrivateKey
	if parsed, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		key = parsed
	} else if parsedAny, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := parsedAny.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("signing key is not an RSA key")
		}
		key = rsaKey
	} else {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	return &JWTSigner{privateKey: key, keyID: uuid.NewString(), issuer: issuer}, nil
}

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) Sign(claims ports.TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, tokenClaims{
		Email: claims.Email,
		Role:  claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.TokenID,
			Subject:   claims.UserID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	token.Header["kid"] = s.keyID

	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTSigner) ParseAndValidate(raw string) (ports.TokenClaims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return &s.privateKey.PublicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("parse token: %w", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("parse token subject: %w", err)
	}

	out := ports.TokenClaims{
		TokenID: claims.ID,
		UserID:  userID,
		Email:   claims.Email,
		Role:    claims.Role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
