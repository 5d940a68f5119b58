package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access_secret_key_1234567890"
	testRefreshSecret = "refresh_secret_key_0987654321"
)

func TestIssuePair_VerifyBothTokens(t *testing.T) {
	maker := NewMaker(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)

	tests := []struct {
		name    string
		userUID string
	}{
		{name: "uuid subject", userUID: "3f1c9a2e-7b45-4d1f-8f7a-2f60d1c5e901"},
		{name: "plain subject", userUID: "user-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access, refresh, err := maker.IssuePair(tt.userUID)
			require.NoError(t, err)
			require.NotEmpty(t, access)
			require.NotEmpty(t, refresh)
			assert.NotEqual(t, access, refresh)

			gotUID, err := maker.VerifyAccess(access)
			require.NoError(t, err)
			assert.Equal(t, tt.userUID, gotUID)

			gotUID, err = maker.VerifyRefresh(refresh)
			require.NoError(t, err)
			assert.Equal(t, tt.userUID, gotUID)
		})
	}
}

func TestVerify_SecretsAreNotInterchangeable(t *testing.T) {
	maker := NewMaker(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)

	access, refresh, err := maker.IssuePair("user-1")
	require.NoError(t, err)

	_, err = maker.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = maker.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_ExpiredToken(t *testing.T) {
	maker := NewMaker(testAccessSecret, testRefreshSecret, -time.Minute, -time.Minute)

	access, refresh, err := maker.IssuePair("user-1")
	require.NoError(t, err)

	_, err = maker.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = maker.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_MalformedToken(t *testing.T) {
	maker := NewMaker(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty string", token: ""},
		{name: "not a jwt", token: "garbage"},
		{name: "truncated jwt", token: "eyJhbGciOiJIUzI1NiJ9.eyJ1aWQiOiJ4In0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := maker.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestVerify_ForeignSecret(t *testing.T) {
	maker := NewMaker(testAccessSecret, testRefreshSecret, 15*time.Minute, 7*24*time.Hour)
	foreign := NewMaker("some-other-secret", "another-secret", 15*time.Minute, 7*24*time.Hour)

	access, _, err := foreign.IssuePair("user-1")
	require.NoError(t, err)

	_, err = maker.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
