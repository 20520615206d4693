package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMakeVerifyToken(t *testing.T) {
	secretKey := "secret"
	timeout := 3 * 24 * time.Hour

	now := time.Now()
	usr := User{
		ID:        1,
		Name:      "T",
		Username:  "t",
		Email:     "t@test.test",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	_ = usr.SetPassword("pwd")

	validToken := makeToken(usr, secretKey)

	// generate an expired token
	dayLate := timeout + (24 * time.Hour)
	nowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := makeToken(usr, secretKey)
	nowFunc = time.Now // reset

	// a password change invalidates the token
	changed := usr
	_ = changed.SetPassword("new-pwd")

	tests := []struct {
		name    string
		usr     User
		token   string
		secret  string
		wantErr error
	}{
		{name: "no token", usr: usr, secret: secretKey, wantErr: errInvalidToken},
		{name: "invalid parts len", usr: usr, secret: secretKey, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", usr: usr, secret: secretKey, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", usr: usr, secret: secretKey, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", usr: usr, secret: secretKey, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "wrong secret", usr: usr, secret: "other", token: validToken, wantErr: errInvalidToken},
		{name: "password changed", usr: changed, secret: secretKey, token: validToken, wantErr: errInvalidToken},
		{name: "expired token", usr: usr, secret: secretKey, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", usr: usr, secret: secretKey, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, verifyToken(tt.usr, tt.token, tt.secret, timeout))
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	uid := EncodeUID(User{ID: 42})
	id, err := decodeUID(uid)
	assert.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = decodeUID("%%%")
	assert.Error(t, err)
}
