package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticCredentialsVerify(t *testing.T) {
	creds := StaticCredentials{Username: "felipe", Password: "teste123"}

	assert.True(t, creds.Verify("felipe", "teste123"))
	assert.False(t, creds.Verify("felipe", "wrong"))
	assert.False(t, creds.Verify("Felipe", "teste123"))
	assert.False(t, creds.Verify("", ""))

	assert.False(t, StaticCredentials{}.Verify("", ""))
}
