package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeMail(t *testing.T) {
	m := NewMailer("smtp.example.org", 587, "ops@example.org", "Projector", "pw", []string{"a@example.org"}, nil)
	assert.Equal(t, "smtp.example.org:587", m.serverURL)
	assert.NotNil(t, m.auth)

	e := m.compose("store failure", "ledger 42")
	assert.Equal(t, "Projector <ops@example.org>", e.From)
	assert.Equal(t, []string{"a@example.org"}, e.To)
	assert.Equal(t, "store failure", e.Subject)

	raw, err := e.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ledger 42")
}

func TestMailerWithoutAuth(t *testing.T) {
	m := NewMailer("localhost", 25, "ops@example.org", "", "", nil, nil)
	assert.Nil(t, m.auth)
	assert.Equal(t, "ops@example.org", m.fromWithName)
}
