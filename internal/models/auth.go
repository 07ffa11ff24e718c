package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims are the claims carried by access tokens issued by the identity
// collaborator. Actor identity always comes from here, never from payloads.
type JWTClaims struct {
	UserID     string       `json:"user_id"`
	BusinessID string       `json:"business_id"`
	ProviderID string       `json:"provider_id"`
	Role       ProviderRole `json:"role"`
	jwt.RegisteredClaims
}

// Actor is the authenticated caller collapsed to what the engines need for
// role gating.
type Actor struct {
	Role       ProviderRole
	BusinessID string
	ProviderID string
}

// ActorFromClaims converts token claims into an engine-facing actor.
func ActorFromClaims(claims *JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{
		Role:       claims.Role,
		BusinessID: claims.BusinessID,
		ProviderID: claims.ProviderID,
	}
}

// CanManageSchedules reports whether the actor may trigger inheritance sync.
func (a Actor) CanManageSchedules() bool {
	return a.Role == RoleOwner || a.Role == RoleDispatcher
}
