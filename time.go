package hsjwt

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/cybergodev/hsjwt/claims"
)

// Registered time claims, in seconds since the Unix epoch.
const (
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"

	// maxUnixTime is 9999-12-31T23:59:59Z.
	maxUnixTime = 253402300799
)

// AddLifetime appends "iat" = now and "exp" = now+ttl to payload. On error
// payload is left unchanged.
func AddLifetime(payload *claims.Set, now time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return &ValidationError{Field: ClaimExpiresAt, Message: "lifetime must be positive"}
	}
	if payload == nil || now.IsZero() {
		return ErrNullParameter
	}
	for _, name := range []string{ClaimIssuedAt, ClaimExpiresAt} {
		if _, exists := payload.Get(name); exists {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}
	if err := payload.AddTime(ClaimIssuedAt, now); err != nil {
		return err
	}
	return payload.AddTime(ClaimExpiresAt, now.Add(ttl))
}

// payloadExpiry reads the numeric "exp" claim from a decoded payload.
// Values before the epoch are clamped to it; values past maxUnixTime are
// ignored.
func payloadExpiry(payload []byte) (time.Time, bool) {
	exp := gjson.GetBytes(payload, ClaimExpiresAt)
	if exp.Type != gjson.Number {
		return time.Time{}, false
	}
	if exp.Num < 0 {
		return time.Unix(0, 0).UTC(), true
	}
	unix := exp.Int()
	if unix > maxUnixTime {
		return time.Time{}, false
	}
	return time.Unix(unix, 0).UTC(), true
}

// isExpired reports whether payload has an "exp" claim at or before now.
// A payload without "exp" never expires.
func isExpired(payload []byte, now time.Time) bool {
	exp, ok := payloadExpiry(payload)
	return ok && !now.Before(exp)
}
