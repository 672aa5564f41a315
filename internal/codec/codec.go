// Package codec implements the response encoding expected by existing
// clients: base64 of the JSON payload with one random lowercase letter
// spliced in after the second character. It only defeats casual inspection of
// network payloads and is not a security control.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"math/rand"
)

const insertOffset = 2

const letters = "abcdefghijklmnopqrstuvwxyz"

// Encode serializes payload to JSON, base64-encodes it and injects the junk
// character at the fixed offset.
func Encode(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	enc := base64.StdEncoding.EncodeToString(raw)
	if len(enc) < insertOffset {
		return enc, nil
	}
	ch := letters[rand.Intn(len(letters))]
	return enc[:insertOffset] + string(ch) + enc[insertOffset:], nil
}

// Decode strips the character at the fixed offset, base64-decodes the rest
// and unmarshals into v.
func Decode(s string, v any) error {
	if len(s) > insertOffset {
		s = s[:insertOffset] + s[insertOffset+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
