package jwttoken

import "verigate/internal/platform/middleware"

// MiddlewareAdapter bridges the JWT service to the middleware-facing
// TokenValidator interface without the middleware importing this package.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{
		CallerID: claims.CallerID,
		ClientID: claims.ClientID,
	}, nil
}
