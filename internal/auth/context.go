package auth

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc/metadata"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Header and metadata keys set by the gateway after it validated the token.
const (
	HeaderUserID   = "X-User-ID"
	HeaderSellerID = "X-Seller-ID"
	HeaderRole     = "X-User-Role"
)

type UserContext struct {
	UserID   string
	SellerID string
	Role     string
}

func (u UserContext) Authenticated() bool {
	return u.UserID != ""
}

func (u UserContext) IsSeller() bool {
	return u.SellerID != "" && (u.Role == RoleSeller || u.Role == RoleAdmin)
}

func (u UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type ctxKey struct{}

func WithUser(ctx context.Context, u UserContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// GetUser returns the caller identity from the context, falling back to
// incoming gRPC metadata.
func GetUser(ctx context.Context) UserContext {
	if u, ok := ctx.Value(ctxKey{}).(UserContext); ok {
		return u
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return UserContext{}
	}
	return UserContext{
		UserID:   first(md, HeaderUserID),
		SellerID: first(md, HeaderSellerID),
		Role:     strings.ToLower(first(md, HeaderRole)),
	}
}

func GetUserID(ctx context.Context) string {
	return GetUser(ctx).UserID
}

func FromRequest(r *http.Request) UserContext {
	return UserContext{
		UserID:   strings.TrimSpace(r.Header.Get(HeaderUserID)),
		SellerID: strings.TrimSpace(r.Header.Get(HeaderSellerID)),
		Role:     strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderRole))),
	}
}

func first(md metadata.MD, key string) string {
	if val := md.Get(key); len(val) > 0 {
		return strings.TrimSpace(val[0])
	}
	return ""
}
