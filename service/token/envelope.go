package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"

	"github.com/viant/offboard/model"
)

// signatureSize is the length of the hex encoded HMAC-SHA256 suffix
const signatureSize = sha256.Size * 2

var encoding = base64.RawURLEncoding

// canonical serialises every field except the signature as sorted
// key=value pairs joined by '&'. Keys and values are query-escaped so the
// serialisation stays injective for arbitrary payload values.
func canonical(env *Envelope) string {
	values := url.Values{}
	for k, v := range env.Fields {
		values.Set(k, v)
	}
	values.Set(FieldKind, string(env.Kind))
	values.Set(FieldIssuedAt, strconv.FormatInt(env.IssuedAt.Unix(), 10))
	values.Set(FieldExpiry, strconv.FormatInt(env.ExpiresAt.Unix(), 10))
	return values.Encode()
}

func sign(key []byte, message []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// encode joins the encoded canonical form with its signature
func encode(key []byte, env *Envelope) string {
	message := canonical(env)
	return encoding.EncodeToString([]byte(message)) + sign(key, []byte(message))
}

// authenticate splits the token and checks the signature before anything
// inside it is interpreted; it returns the signed canonical bytes.
func authenticate(key []byte, token string) ([]byte, error) {
	if len(token) <= signatureSize {
		return nil, model.NewError(model.ReasonMalformedToken, "token too short")
	}
	segment, signature := token[:len(token)-signatureSize], token[len(token)-signatureSize:]
	message, err := encoding.DecodeString(segment)
	if err != nil {
		return nil, model.NewError(model.ReasonMalformedToken, "invalid token encoding")
	}
	if encoding.EncodeToString(message) != segment {
		// non-zero trailing bits decode to the same bytes
		return nil, model.NewError(model.ReasonInvalidSignature, "non canonical token encoding")
	}
	expected := sign(key, message)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, model.NewError(model.ReasonInvalidSignature, "signature mismatch")
	}
	return message, nil
}

// parse decodes authenticated canonical bytes into an envelope of the expected kind
func parse(message []byte, kind Kind) (*Envelope, error) {
	values, err := url.ParseQuery(string(message))
	if err != nil {
		return nil, model.NewError(model.ReasonMalformedToken, "invalid token fields")
	}
	fields := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) != 1 {
			return nil, model.NewError(model.ReasonMalformedToken, "duplicate field %v", k)
		}
		fields[k] = v[0]
	}
	if Kind(fields[FieldKind]) != kind {
		return nil, model.NewError(model.ReasonMalformedToken, "expected %v token", kind)
	}
	issuedAt, err := unixField(fields, FieldIssuedAt)
	if err != nil {
		return nil, err
	}
	expiresAt, err := unixField(fields, FieldExpiry)
	if err != nil {
		return nil, err
	}
	delete(fields, FieldKind)
	delete(fields, FieldIssuedAt)
	delete(fields, FieldExpiry)
	return &Envelope{Kind: kind, IssuedAt: issuedAt, ExpiresAt: expiresAt, Fields: fields}, nil
}

func unixField(fields map[string]string, name string) (time.Time, error) {
	value, ok := fields[name]
	if !ok {
		return time.Time{}, model.NewError(model.ReasonMalformedToken, "missing required field: %v", name)
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, model.NewError(model.ReasonMalformedToken, "invalid %v: %v", name, value)
	}
	return time.Unix(seconds, 0), nil
}
