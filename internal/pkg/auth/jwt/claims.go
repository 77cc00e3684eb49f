package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the claims of a livechat session token.
// A token proves that its holder registered or logged in as Username, which pins the
// identity a WebSocket connection may announce.
type Payload struct {
	// StandardClaims embeds Exp, Iat, Iss and Jti. These are checked on every parse.
	jwt.StandardClaims `json:"standard_claims"`

	// Username is the authenticated account name.
	Username string `json:"username"`
}
