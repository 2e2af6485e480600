package auth

import "crypto/subtle"

// Credentials holds the admin username and password the server accepts.
type Credentials struct {
	Username string
	Password string
}

// Match reports whether the supplied username and password are correct.
// Both comparisons are constant-time and both always run, so response
// timing does not reveal which field was wrong.
func (c Credentials) Match(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
	return userOK && passOK
}
