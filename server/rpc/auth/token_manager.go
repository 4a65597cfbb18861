/*
 * Copyright 2026 The Tasklane Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package auth provides the authentication of API requests.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasklane/tasklane/api/types"
)

// IdentityClaims is a JWT claims struct for an identity. The subject is the
// user id.
type IdentityClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secretKey     string
	tokenDuration time.Duration
}

// NewTokenManager creates a new TokenManager.
func NewTokenManager(secretKey string, tokenDuration time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
	}
}

// Generate generates a new token for the identity.
func (m *TokenManager) Generate(identity *types.Identity) (string, error) {
	now := time.Now()
	claims := IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
		},
		Email: identity.Email,
		Name:  identity.DisplayName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signedToken, nil
}

// Verify verifies the given token and returns the identity it was issued for.
func (m *TokenManager) Verify(_ context.Context, token string) (*types.Identity, error) {
	claims := &IdentityClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(m.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		return nil, fmt.Errorf("parse token: %s: %w", err.Error(), ErrUnauthenticated)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("token without subject: %w", ErrUnauthenticated)
	}

	return &types.Identity{
		ID:          types.ID(claims.Subject),
		Email:       claims.Email,
		DisplayName: claims.Name,
	}, nil
}
