package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"
)

func TestGetUserPrefersContextValue(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-user-id", "from-md"))
	ctx = WithUser(ctx, UserContext{UserID: "from-ctx"})

	assert.Equal(t, "from-ctx", GetUserID(ctx))
}

func TestGetUserFromMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
		"x-user-id", "u1",
		"x-seller-id", "s1",
		"x-user-role", "Seller",
	))

	u := GetUser(ctx)
	assert.Equal(t, "u1", u.UserID)
	assert.True(t, u.IsSeller())
	assert.False(t, u.IsAdmin())
}

func TestGetUserAnonymous(t *testing.T) {
	u := GetUser(context.Background())
	assert.False(t, u.Authenticated())
	assert.False(t, u.IsSeller())
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set(HeaderUserID, " u2 ")
	r.Header.Set(HeaderRole, "ADMIN")

	u := FromRequest(r)
	assert.Equal(t, "u2", u.UserID)
	assert.True(t, u.IsAdmin())
	assert.False(t, u.IsSeller(), "sellers need a seller id")
}
