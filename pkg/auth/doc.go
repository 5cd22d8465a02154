// Package auth implements identity for teamboard: password hashing, signed
// identity tokens, failed-login throttling and the account service built on them.
//
// # Login
//
// Service.Login runs a fixed sequence for every attempt:
//
//	throttle check -> lookup by email -> password verify -> status check -> token issue
//
// A throttled identifier is refused with ErrThrottled even when the password is
// right. Unknown email and wrong password both return ErrInvalidCredentials, but
// only a wrong password is counted. Inactive accounts get a LoginInactive result
// and no token.
//
// # Throttling
//
// Two Throttle implementations are provided. MemoryThrottle keeps counts in a
// mutex-guarded map and is suitable for a single instance; RedisThrottle shares
// counts across instances with INCR and a key TTL. In both, the window opens on
// the first failure and is not extended by later ones.
//
//	throttle := auth.NewMemoryThrottle(3, time.Minute, clockwork.NewRealClock())
//	go throttle.RunSweeper(ctx, time.Minute)
//
// # Tokens
//
// JWTIssuer signs HS256 tokens whose subject is the user's NIP. The claims carry
// the sanitized user only; the password hash never leaves the store.
//
//	issuer, err := auth.NewJWTIssuer(secret, auth.WithTTL(24*time.Hour))
//	token, err := issuer.Issue(user.Public())
//	claims, err := issuer.Verify(token)
package auth
