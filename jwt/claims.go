package jwt

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the account role embedded in a credential.
type Role string

const (
	RoleCandidate Role = "CANDIDATE"
	RoleRecruiter Role = "RECRUITER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleRecruiter
}

// UserID accepts both numeric and string identifiers on the wire.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Claims is the claim set carried by a job-board credential. The subject is the
// account email.
type Claims struct {
	Role   Role   `json:"role,omitempty"`
	UserID UserID `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// Email returns the subject claim.
func (c *Claims) Email() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
