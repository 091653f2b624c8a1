package domain

import "encoding/json"

// Location is a single search hit as returned by the location backend.
// The payload is passed through to clients untouched.
type Location = json.RawMessage
