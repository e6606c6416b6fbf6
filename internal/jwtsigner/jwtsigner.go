// Package jwtsigner signs and verifies the service's JWTs with either an
// HS256 shared secret or an Ed25519 keypair.
package jwtsigner

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AlgHS256 = "HS256"
	AlgEdDSA = "EdDSA"
)

var ErrInvalidToken = errors.New("invalid token")

type Signer struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	public    ed25519.PublicKey
	KeyID     string
	Issuer    string
}

// New builds a signer for alg. For HS256 key is the raw secret. For EdDSA key
// is the base64 encoded private key; an empty key generates an ephemeral one
// (good for local dev only, tokens die with the process).
func New(alg, key, kid, iss string) (*Signer, error) {
	switch alg {
	case AlgHS256, "":
		if key == "" {
			return nil, errors.New("hs256 requires a signing key")
		}
		secret := []byte(key)
		return &Signer{method: jwt.SigningMethodHS256, signKey: secret, verifyKey: secret, KeyID: kid, Issuer: iss}, nil
	case AlgEdDSA:
		return newEd25519(key, kid, iss)
	default:
		return nil, fmt.Errorf("unsupported signing alg %q", alg)
	}
}

func newEd25519(privB64, kid, iss string) (*Signer, error) {
	var priv ed25519.PrivateKey
	if privB64 == "" {
		_, generated, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		priv = generated
	} else {
		raw, err := base64.StdEncoding.DecodeString(privB64)
		if err != nil {
			return nil, err
		}
		if len(raw) != ed25519.PrivateKeySize {
			return nil, errors.New("invalid ed25519 private key size")
		}
		priv = ed25519.PrivateKey(raw)
	}
	pub := priv.Public().(ed25519.PublicKey)
	return &Signer{method: jwt.SigningMethodEdDSA, signKey: priv, verifyKey: pub, public: pub, KeyID: kid, Issuer: iss}, nil
}

func (s *Signer) Alg() string { return s.method.Alg() }

// Sign serialises claims and stamps the kid header.
func (s *Signer) Sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, claims)
	if s.KeyID != "" {
		t.Header["kid"] = s.KeyID
	}
	return t.SignedString(s.signKey)
}

// Parse verifies signature, expiry and issuer and fills claims.
func (s *Signer) Parse(tokenStr string, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithIssuer(s.Issuer),
		jwt.WithExpirationRequired(),
	)
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return s.verifyKey, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return ErrInvalidToken
	}
	return nil
}

// PublicJWKs renders the verification key set. HMAC secrets are never
// published, so HS256 signers return an empty set.
func (s *Signer) PublicJWKs() []map[string]any {
	if s.public == nil {
		return []map[string]any{}
	}
	return []map[string]any{{
		"kty": "OKP",
		"crv": "Ed25519",
		"alg": "EdDSA",
		"use": "sig",
		"kid": s.KeyID,
		"x":   base64.RawURLEncoding.EncodeToString(s.public),
	}}
}
