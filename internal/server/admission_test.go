package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCredentials(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		headers map[string]string
		want    Credentials
	}{
		{
			name:   "query parameters",
			target: "/ws?token=agent-1&username=Bia",
			want:   Credentials{Token: "agent-1", Username: "Bia"},
		},
		{
			name:    "bearer header and username header",
			target:  "/ws",
			headers: map[string]string{"Authorization": "Bearer agent-2", "X-Username": "Duda"},
			want:    Credentials{Token: "agent-2", Username: "Duda"},
		},
		{
			name:    "query wins over headers",
			target:  "/ws?token=q-token&username=q-user",
			headers: map[string]string{"Authorization": "Bearer h-token", "X-Username": "h-user"},
			want:    Credentials{Token: "q-token", Username: "q-user"},
		},
		{
			name:    "non bearer scheme is ignored",
			target:  "/ws",
			headers: map[string]string{"Authorization": "Basic abc"},
			want:    Credentials{},
		},
		{
			name:   "nothing presented",
			target: "/ws",
			want:   Credentials{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ExtractCredentials(r))
		})
	}
}

func TestAdmit(t *testing.T) {
	agent := Admit(Credentials{Token: "agent-1", Username: "Bia"})
	assert.Equal(t, Identity{IsAgent: true, AgentID: "agent-1", AgentName: "Bia"}, agent)

	assert.False(t, Admit(Credentials{Token: "agent-1"}).IsAgent)
	assert.False(t, Admit(Credentials{Username: "Bia"}).IsAgent)
	assert.False(t, Admit(Credentials{}).IsAgent)
}
