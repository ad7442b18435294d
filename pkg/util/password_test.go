package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "Secret!Pass1"

	hash, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	// Hashing the same password twice yields different hashes (random salt)
	hash2, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestVerifyPassword(t *testing.T) {
	password := "Secret!Pass1"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{
			name:     "Correct password",
			password: "Secret!Pass1",
			want:     true,
		},
		{
			name:     "Wrong password",
			password: "Wrong!Pass1",
			want:     false,
		},
		{
			name:     "Empty password",
			password: "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(hash, tt.password))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "Valid password",
			password: "Abcdef!1",
			wantErr:  nil,
		},
		{
			name:     "Valid with max length",
			password: "Abcdefghijkl!234",
			wantErr:  nil,
		},
		{
			name:     "Too short",
			password: "Ab!1",
			wantErr:  ErrPasswordLength,
		},
		{
			name:     "Too long",
			password: "Abcdefghijklmnop!1",
			wantErr:  ErrPasswordLength,
		},
		{
			name:     "No uppercase",
			password: "abcdef!1",
			wantErr:  ErrPasswordUppercase,
		},
		{
			name:     "No special character",
			password: "Abcdefg1",
			wantErr:  ErrPasswordSpecial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
