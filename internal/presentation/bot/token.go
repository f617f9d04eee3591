package bot

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// masterIDFromToken pulls the account id out of the backend's JWT. The bot
// only stores the token and never verifies it (that is the backend's job on
// every API call), so an unverified parse is enough to learn who logged in.
func masterIDFromToken(token string) (int64, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("unexpected claims type %T", parsed.Claims)
	}

	if id, ok := claims["id"]; ok {
		return claimToInt64(id)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, fmt.Errorf("token carries no account id")
	}

	masterID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token subject %q is not an account id: %w", sub, err)
	}
	return masterID, nil
}

func claimToInt64(v any) (int64, error) {
	switch id := v.(type) {
	case float64:
		return int64(id), nil
	case string:
		parsed, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("token id claim %q is not numeric: %w", id, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("token id claim has unexpected type %T", v)
	}
}
