package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
)

func GetUUID() string {
	return uuid.New().String()
}

// DecodeStrict decodes a JSON request body into dst, rejecting unknown
// fields so malformed documents never reach the database.
func DecodeStrict(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
