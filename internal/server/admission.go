package server

import (
	"net/http"
	"strings"
)

// Identity is decided once when the connection is admitted and never changes afterwards.
type Identity struct {
	IsAgent   bool
	AgentID   string
	AgentName string
}

// Credentials are whatever the peer presented on the upgrade request.
type Credentials struct {
	Token    string
	Username string
}

// ExtractCredentials reads token and username from the query string, falling back to the
// Authorization bearer header and X-Username.
func ExtractCredentials(r *http.Request) Credentials {
	q := r.URL.Query()
	creds := Credentials{
		Token:    strings.TrimSpace(q.Get("token")),
		Username: strings.TrimSpace(q.Get("username")),
	}

	if creds.Token == "" {
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				creds.Token = strings.TrimSpace(parts[1])
			}
		}
	}
	if creds.Username == "" {
		creds.Username = strings.TrimSpace(r.Header.Get("X-Username"))
	}
	return creds
}

// Admit classifies a connection. Token and username together make an agent, anything else is a client.
func Admit(creds Credentials) Identity {
	if creds.Token != "" && creds.Username != "" {
		return Identity{IsAgent: true, AgentID: creds.Token, AgentName: creds.Username}
	}
	return Identity{}
}
