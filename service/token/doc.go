// Package token implements the stateless action-token protocol.
//
// A token is a self-contained bearer credential: the canonical form of its
// fields (sorted key=value pairs joined by '&') encoded as unpadded
// base64url, immediately followed by the lowercase hex HMAC-SHA256 of that
// canonical form. Approval tokens and form tokens share the envelope but are
// signed with different keys derived from one secret, so a token minted for
// one variant never authenticates as the other.
//
// Verification is read-only and depends only on the secret and the clock;
// a Service is safe for concurrent use.
package token
