package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signage-user-service/internal/usecase/user"
)

func TestPrintCreated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printCreated(&buf, &user.CreateUserResponse{
		User:     user.User{Name: "admin", Groups: []string{"admin"}},
		Password: "AbCdEfGh12345678",
	}))

	assert.Equal(t, "user:     admin\ngroups:   [admin]\npassword: AbCdEfGh12345678\n", buf.String())
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printStatus(&buf, 3, 64))
	assert.Equal(t, "users: 3 (limit 64)\n", buf.String())

	buf.Reset()
	require.NoError(t, printStatus(&buf, 3, 0))
	assert.Equal(t, "users: 3 (limit unlimited)\n", buf.String())
}
