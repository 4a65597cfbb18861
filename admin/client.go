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

// Package admin provides a client of the Tasklane HTTP API. It is used by the
// CLI and by tests that drive a running server.
package admin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"go.uber.org/zap"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/internal/version"
)

// DefaultTimeout is the timeout of a single request.
const DefaultTimeout = 10 * time.Second

// Option configures Options.
type Option func(*Options)

// WithToken configures the token of the client.
func WithToken(token string) Option {
	return func(o *Options) { o.Token = token }
}

// WithInsecure configures the client to use plain HTTP.
func WithInsecure(isInsecure bool) Option {
	return func(o *Options) { o.IsInsecure = isInsecure }
}

// WithTimeout configures the timeout of a single request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) { o.Timeout = timeout }
}

// WithLogger configures the Logger of the client.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// Options configures how we set up the client.
type Options struct {
	// Token is the access token of the user.
	Token string

	// IsInsecure is whether to disable the TLS connection of the client.
	IsInsecure bool

	// Timeout is the timeout of a single request.
	Timeout time.Duration

	// Logger is the Logger of the client.
	Logger *zap.Logger
}

// Error is returned when the server answers with an error status. Code is
// the stable error code, e.g. "ErrInviteNotPending".
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error returns the message of the server.
func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Client is a client of the Tasklane HTTP API.
type Client struct {
	client *req.Client
	logger *zap.Logger
}

// New creates an instance of Client for the given address. The address may
// be a host:port pair or a full URL.
func New(addr string, opts ...Option) (*Client, error) {
	options := Options{Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&options)
	}

	logger := options.Logger
	if logger == nil {
		l, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("new logger: %w", err)
		}
		logger = l
	}

	client := req.C().
		SetBaseURL(baseURL(addr, options.IsInsecure)).
		SetUserAgent("tasklane-cli/" + version.Version).
		SetTimeout(options.Timeout).
		SetCommonErrorResult(&Error{})
	if options.Token != "" {
		client.SetCommonBearerAuthToken(options.Token)
	}

	return &Client{
		client: client,
		logger: logger,
	}, nil
}

func baseURL(addr string, isInsecure bool) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/")
	}
	if isInsecure {
		return "http://" + addr
	}
	return "https://" + addr
}

// SetToken sets the access token of the client.
func (c *Client) SetToken(token string) {
	c.client.SetCommonBearerAuthToken(token)
}

// Health checks that the server is serving.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/healthz")
	return c.check("health", resp, err)
}

// CreateWorkspace creates a workspace owned by the caller.
func (c *Client) CreateWorkspace(ctx context.Context, name string) (*types.Workspace, error) {
	var workspace types.Workspace
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&types.CreateWorkspaceFields{Name: name}).
		SetSuccessResult(&workspace).
		Post("/v1/workspaces")
	if err := c.check("create workspace "+name, resp, err); err != nil {
		return nil, err
	}

	return &workspace, nil
}

// ListWorkspaces returns the workspaces the caller owns or belongs to.
func (c *Client) ListWorkspaces(ctx context.Context) ([]*types.Workspace, error) {
	var workspaces []*types.Workspace
	resp, err := c.client.R().
		SetContext(ctx).
		SetSuccessResult(&workspaces).
		Get("/v1/workspaces")
	if err := c.check("list workspaces", resp, err); err != nil {
		return nil, err
	}

	return workspaces, nil
}

// ListMembers returns the member directory of the workspace.
func (c *Client) ListMembers(ctx context.Context, workspaceID types.ID) ([]*types.User, error) {
	var users []*types.User
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", workspaceID.String()).
		SetSuccessResult(&users).
		Get("/v1/workspaces/{id}/members")
	if err := c.check("list members of "+workspaceID.String(), resp, err); err != nil {
		return nil, err
	}

	return users, nil
}

// RemoveMember removes the member from the workspace.
func (c *Client) RemoveMember(ctx context.Context, workspaceID, userID types.ID) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"id": workspaceID.String(), "userID": userID.String()}).
		Delete("/v1/workspaces/{id}/members/{userID}")
	return c.check("remove member "+userID.String(), resp, err)
}

// UpdateMemberRole changes the role of the member.
func (c *Client) UpdateMemberRole(
	ctx context.Context,
	workspaceID, userID types.ID,
	role types.MemberRole,
) (*types.Member, error) {
	return c.updateMember(ctx, workspaceID, userID, map[string]any{"role": role})
}

// LinkNotificationChannel sets the chat the member is notified in.
func (c *Client) LinkNotificationChannel(
	ctx context.Context,
	workspaceID, userID types.ID,
	channelID string,
) (*types.Member, error) {
	return c.updateMember(ctx, workspaceID, userID, map[string]any{"notificationChannelId": channelID})
}

func (c *Client) updateMember(
	ctx context.Context,
	workspaceID, userID types.ID,
	body map[string]any,
) (*types.Member, error) {
	var member types.Member
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"id": workspaceID.String(), "userID": userID.String()}).
		SetBody(body).
		SetSuccessResult(&member).
		Patch("/v1/workspaces/{id}/members/{userID}")
	if err := c.check("update member "+userID.String(), resp, err); err != nil {
		return nil, err
	}

	return &member, nil
}

// CreateInvite invites the email to the workspace with the role.
func (c *Client) CreateInvite(
	ctx context.Context,
	workspaceID types.ID,
	email string,
	role types.MemberRole,
) (*types.Invite, error) {
	var invite types.Invite
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", workspaceID.String()).
		SetBody(&types.CreateInviteFields{Email: email, Role: role}).
		SetSuccessResult(&invite).
		Post("/v1/workspaces/{id}/invites")
	if err := c.check("create invite", resp, err); err != nil {
		return nil, err
	}

	return &invite, nil
}

// ListInvites returns the pending invites of the workspace.
func (c *Client) ListInvites(ctx context.Context, workspaceID types.ID) ([]*types.Invite, error) {
	var invites []*types.Invite
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", workspaceID.String()).
		SetSuccessResult(&invites).
		Get("/v1/workspaces/{id}/invites")
	if err := c.check("list invites of "+workspaceID.String(), resp, err); err != nil {
		return nil, err
	}

	return invites, nil
}

// RevokeInvite revokes the pending invite.
func (c *Client) RevokeInvite(ctx context.Context, workspaceID types.ID, token string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"id": workspaceID.String(), "token": token}).
		Delete("/v1/workspaces/{id}/invites/{token}")
	return c.check("revoke invite", resp, err)
}

// AcceptInvite consumes the invite and returns the membership of the caller.
func (c *Client) AcceptInvite(ctx context.Context, workspaceID types.ID, token string) (*types.Member, error) {
	var member types.Member
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"id": workspaceID.String(), "token": token}).
		SetSuccessResult(&member).
		Post("/v1/workspaces/{id}/invites/{token}/accept")
	if err := c.check("accept invite", resp, err); err != nil {
		return nil, err
	}

	return &member, nil
}

// CreateTask creates a task or a project in the workspace.
func (c *Client) CreateTask(
	ctx context.Context,
	workspaceID types.ID,
	kind types.TaskKind,
	fields types.Fields,
) (*types.Task, error) {
	var task types.Task
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", workspaceID.String()).
		SetBody(map[string]any{"kind": kind, "fields": fields}).
		SetSuccessResult(&task).
		Post("/v1/workspaces/{id}/tasks")
	if err := c.check("create "+string(kind), resp, err); err != nil {
		return nil, err
	}

	return &task, nil
}

// UpdateTask applies the fields to the task and deletes the given keys.
func (c *Client) UpdateTask(
	ctx context.Context,
	workspaceID types.ID,
	kind types.TaskKind,
	taskID types.ID,
	fields types.Fields,
	deletes []string,
) (*types.Task, error) {
	var task types.Task
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"id": workspaceID.String(), "taskID": taskID.String()}).
		SetBody(map[string]any{"kind": kind, "fields": fields, "delete": deletes}).
		SetSuccessResult(&task).
		Patch("/v1/workspaces/{id}/tasks/{taskID}")
	if err := c.check("update "+string(kind)+" "+taskID.String(), resp, err); err != nil {
		return nil, err
	}

	return &task, nil
}

// check turns a transport failure or an error status into an error.
func (c *Client) check(op string, resp *req.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if resp.IsErrorState() {
		apiErr, ok := resp.ErrorResult().(*Error)
		if !ok || apiErr == nil {
			apiErr = &Error{Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.StatusCode = resp.StatusCode
		c.logger.Debug("request failed", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%s: %w", op, apiErr)
	}

	return nil
}
