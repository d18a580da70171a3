package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// retryAfterFailure is how long a failed cert fetch is remembered before
// another is attempted.
const retryAfterFailure = 30 * time.Second

// DefaultCertsURL serves the X.509 certificates that sign Firebase ID tokens.
const DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// FirebaseClaims are the ID-token claims we read.
type FirebaseClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// FirebaseVerifier validates Firebase ID tokens locally against Google's
// rotating public keys.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	now       func() time.Time

	fetch singleflight.Group

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
	retryAt time.Time
	lastErr error
}

// NewFirebaseVerifier returns a verifier for projectID. An empty certsURL
// uses DefaultCertsURL.
func NewFirebaseVerifier(projectID, certsURL string, client *http.Client) *FirebaseVerifier {
	if certsURL == "" {
		certsURL = DefaultCertsURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FirebaseVerifier{
		projectID: projectID,
		certsURL:  certsURL,
		client:    client,
		now:       time.Now,
	}
}

// Verify checks signature, audience, issuer, expiry and subject.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	claims := &FirebaseClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid header")
		}
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("jwt parse: %w", err)
	}
	if !parsed.Valid {
		return Identity{}, errors.New("jwt invalid")
	}
	if claims.Subject == "" || len(claims.Subject) > 128 {
		return Identity{}, errors.New("jwt has invalid subject")
	}
	return Identity{UID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// key returns the public key for kid. Certs are fetched only once the cached
// set has expired; an unknown kid against a fresh set is simply rejected.
func (v *FirebaseVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	k, ok := v.keys[kid]
	now := v.now()
	fresh := now.Before(v.expires)
	backoff := now.Before(v.retryAt)
	lastErr := v.lastErr
	v.mu.RUnlock()

	switch {
	case fresh && ok:
		return k, nil
	case fresh:
		return nil, fmt.Errorf("unknown signing key %q", kid)
	case backoff:
		return nil, fmt.Errorf("signing certs unavailable: %w", lastErr)
	}

	_, err, _ := v.fetch.Do("certs", func() (interface{}, error) {
		return nil, v.refresh(ctx)
	})
	if err != nil {
		v.mu.Lock()
		v.retryAt = v.now().Add(retryAfterFailure)
		v.lastErr = err
		v.mu.Unlock()
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if k, ok := v.keys[kid]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("unknown signing key %q", kid)
}

func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch signing certs: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch signing certs: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("decode signing certs: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		k, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return fmt.Errorf("parse cert %q: %w", kid, err)
		}
		keys[kid] = k
	}

	v.mu.Lock()
	v.keys = keys
	v.expires = v.now().Add(maxAge(resp.Header.Get("Cache-Control")))
	v.retryAt = time.Time{}
	v.lastErr = nil
	v.mu.Unlock()
	return nil
}

// maxAge reads max-age from a Cache-Control header, defaulting to one hour.
func maxAge(cc string) time.Duration {
	for _, d := range strings.Split(cc, ",") {
		d = strings.TrimSpace(d)
		if v, ok := strings.CutPrefix(d, "max-age="); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return time.Duration(n) * time.Second
			}
		}
	}
	return time.Hour
}
