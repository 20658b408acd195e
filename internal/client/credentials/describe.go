package credentials

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/trinhnguyen1810/stock-advisor-app/internal/common"
)

// Description is what can be read from a JWT credential without verifying
// it. It is for display and logging only; authentication decisions are
// always left to the server.
type Description struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the credential carries an expiry before now.
func (d Description) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}

// Describe decodes the registered claims of cred. Opaque credentials return
// common.ErrMalformedCredential.
func Describe(cred string) (Description, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(cred, claims); err != nil {
		return Description{}, fmt.Errorf("%w: %v", common.ErrMalformedCredential, err)
	}

	d := Description{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		d.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		d.ExpiresAt = claims.ExpiresAt.Time
	}
	return d, nil
}
