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

package auth

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/pkg/errors"
)

var (
	// ErrUnauthenticated is returned when the request carries no valid credential.
	ErrUnauthenticated = errors.Unauthenticated("authentication required").WithCode("ErrUnauthenticated")
)

// Verifier resolves a bearer token to the identity it was issued for.
type Verifier interface {
	Verify(ctx context.Context, token string) (*types.Identity, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier creates a verifier with the auth client of the app.
func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

// Verify verifies the ID token. The email and name come from the token
// claims.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*types.Identity, error) {
	verified, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %s: %w", err.Error(), ErrUnauthenticated)
	}

	identity := &types.Identity{ID: types.ID(verified.UID)}
	if email, ok := verified.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := verified.Claims["name"].(string); ok {
		identity.DisplayName = name
	}
	return identity, nil
}

// BearerToken extracts the token of an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
