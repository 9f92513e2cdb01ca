package pve

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"pvectl/internal/errors"
)

const aclPath = "/access/acl"

// AccessUser is one entry of the user index.
type AccessUser struct {
	UserID    string `json:"userid"`
	Enable    int    `json:"enable"`
	Expire    uint64 `json:"expire"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Comment   string `json:"comment"`
}

// AccessGroup is one entry of the group index.
type AccessGroup struct {
	GroupID string `json:"groupid"`
	Comment string `json:"comment"`
}

// AccessRole is one entry of the role index. Privs is the
// comma-separated privilege list.
type AccessRole struct {
	RoleID string `json:"roleid"`
	Privs  string `json:"privs"`
}

// AccessACL is one access-control entry. UGID names the user, group, or
// token the role is bound to.
type AccessACL struct {
	Path      string `json:"path"`
	UGID      string `json:"ugid"`
	RoleID    string `json:"roleid"`
	Propagate int    `json:"propagate"`
}

// AccessUserToken is one API token of a user, without its secret.
type AccessUserToken struct {
	TokenID string `json:"tokenid"`
	Comment string `json:"comment"`
	Expire  uint64 `json:"expire"`
	Enable  int    `json:"enable"`
	Privsep int    `json:"privsep"`
}

// TokenValue is the payload of token creation. Value is the secret and is
// shown exactly once; it cannot be retrieved again.
type TokenValue struct {
	FullTokenID string          `json:"full-tokenid"`
	Value       string          `json:"value"`
	Info        json.RawMessage `json:"info"`
}

// UserCreateRequest carries the fields of user creation. Enable and Expire
// are pointers so an unset field is omitted rather than sent as zero.
type UserCreateRequest struct {
	UserID    string
	Password  string
	Comment   string
	Email     string
	Enable    *bool
	Expire    uint64
	Firstname string
	Lastname  string
	Groups    string
	Keys      string
}

func (r UserCreateRequest) toParams() Params {
	params := NewParams().
		Set("userid", r.UserID).
		SetOpt("password", r.Password).
		SetOpt("comment", r.Comment).
		SetOpt("email", r.Email).
		SetOpt("firstname", r.Firstname).
		SetOpt("lastname", r.Lastname).
		SetOpt("groups", r.Groups).
		SetOpt("keys", r.Keys)
	if r.Enable != nil {
		params.SetBool("enable", *r.Enable)
	}
	if r.Expire > 0 {
		params.SetUint("expire", r.Expire)
	}
	return params
}

// UserUpdateRequest carries the updatable fields of a user. Zero-value
// fields are omitted from the request.
type UserUpdateRequest struct {
	Comment   string
	Email     string
	Enable    *bool
	Expire    uint64
	Firstname string
	Lastname  string
	Groups    string
	Keys      string
	Password  string
}

func (r UserUpdateRequest) toParams() Params {
	params := NewParams().
		SetOpt("comment", r.Comment).
		SetOpt("email", r.Email).
		SetOpt("firstname", r.Firstname).
		SetOpt("lastname", r.Lastname).
		SetOpt("groups", r.Groups).
		SetOpt("keys", r.Keys).
		SetOpt("password", r.Password)
	if r.Enable != nil {
		params.SetBool("enable", *r.Enable)
	}
	if r.Expire > 0 {
		params.SetUint("expire", r.Expire)
	}
	return params
}

// ACLQuery filters the ACL index.
type ACLQuery struct {
	Path  string
	Exact *bool
}

func (q ACLQuery) toParams() Params {
	params := NewParams().SetOpt("path", q.Path)
	if q.Exact != nil {
		params.SetBool("exact", *q.Exact)
	}
	return params
}

// SetACLRequest binds roles to users, groups, or tokens at a path. At least
// one of Users, Groups, or Tokens must be set.
type SetACLRequest struct {
	Path      string
	Roles     string
	Users     string
	Groups    string
	Tokens    string
	Propagate *bool
}

func (r SetACLRequest) toParams() Params {
	params := NewParams().
		Set("path", r.Path).
		Set("roles", r.Roles).
		SetOpt("users", r.Users).
		SetOpt("groups", r.Groups).
		SetOpt("tokens", r.Tokens)
	if r.Propagate != nil {
		params.SetBool("propagate", *r.Propagate)
	}
	return params
}

// DeleteACLRequest removes role bindings at a path. Roles may be empty when
// at least one of Users, Groups, or Tokens names the binding to drop.
type DeleteACLRequest struct {
	Path   string
	Roles  string
	Users  string
	Groups string
	Tokens string
}

func (r DeleteACLRequest) toParams() Params {
	return NewParams().
		Set("path", r.Path).
		SetOpt("roles", r.Roles).
		SetOpt("users", r.Users).
		SetOpt("groups", r.Groups).
		SetOpt("tokens", r.Tokens).
		SetBool("delete", true)
}

// TokenCreateRequest carries the fields of API token creation.
type TokenCreateRequest struct {
	TokenID string
	Comment string
	Expire  uint64
	Privsep *bool
}

func (r TokenCreateRequest) toParams() Params {
	params := NewParams().
		Set("tokenid", r.TokenID).
		SetOpt("comment", r.Comment)
	if r.Expire > 0 {
		params.SetUint("expire", r.Expire)
	}
	if r.Privsep != nil {
		params.SetBool("privsep", *r.Privsep)
	}
	return params
}

// TokenUpdateRequest carries the updatable fields of an API token.
type TokenUpdateRequest struct {
	Comment string
	Enable  *bool
	Expire  uint64
}

func (r TokenUpdateRequest) toParams() Params {
	params := NewParams().SetOpt("comment", r.Comment)
	if r.Enable != nil {
		params.SetBool("enable", *r.Enable)
	}
	if r.Expire > 0 {
		params.SetUint("expire", r.Expire)
	}
	return params
}

func userPath(userid string) string {
	return "/access/users/" + escapePath(userid)
}

func groupPath(groupid string) string {
	return "/access/groups/" + escapePath(groupid)
}

func tokenPath(userid, tokenid string) string {
	return userPath(userid) + "/token/" + escapePath(tokenid)
}

// Users lists all users.
func (c *Client) Users(ctx context.Context) ([]AccessUser, error) {
	return call[[]AccessUser](ctx, c, http.MethodGet, "/access/users", nil, nil)
}

// User fetches one user by id, in user@realm form.
func (c *Client) User(ctx context.Context, userid string) (AccessUser, error) {
	return call[AccessUser](ctx, c, http.MethodGet, userPath(userid), nil, nil)
}

// UserCreate creates a user.
func (c *Client) UserCreate(ctx context.Context, req UserCreateRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/access/users", nil, req.toParams())
	return err
}

// UserUpdate changes an existing user.
func (c *Client) UserUpdate(ctx context.Context, userid string, req UserUpdateRequest) error {
	_, err := c.do(ctx, http.MethodPut, userPath(userid), nil, req.toParams())
	return err
}

// UserDelete removes a user.
func (c *Client) UserDelete(ctx context.Context, userid string) error {
	_, err := c.do(ctx, http.MethodDelete, userPath(userid), nil, nil)
	return err
}

// Groups lists all groups.
func (c *Client) Groups(ctx context.Context) ([]AccessGroup, error) {
	return call[[]AccessGroup](ctx, c, http.MethodGet, "/access/groups", nil, nil)
}

// Group fetches one group by id.
func (c *Client) Group(ctx context.Context, groupid string) (AccessGroup, error) {
	return call[AccessGroup](ctx, c, http.MethodGet, groupPath(groupid), nil, nil)
}

// GroupCreate creates a group.
func (c *Client) GroupCreate(ctx context.Context, groupid, comment string) error {
	params := NewParams().Set("groupid", groupid).SetOpt("comment", comment)
	_, err := c.do(ctx, http.MethodPost, "/access/groups", nil, params)
	return err
}

// GroupUpdate changes a group's comment.
func (c *Client) GroupUpdate(ctx context.Context, groupid, comment string) error {
	params := NewParams().SetOpt("comment", comment)
	_, err := c.do(ctx, http.MethodPut, groupPath(groupid), nil, params)
	return err
}

// GroupDelete removes a group.
func (c *Client) GroupDelete(ctx context.Context, groupid string) error {
	_, err := c.do(ctx, http.MethodDelete, groupPath(groupid), nil, nil)
	return err
}

// Roles lists all roles with their privilege sets.
func (c *Client) Roles(ctx context.Context) ([]AccessRole, error) {
	return call[[]AccessRole](ctx, c, http.MethodGet, "/access/roles", nil, nil)
}

// ACL lists access-control entries, optionally filtered by path.
func (c *Client) ACL(ctx context.Context, query ACLQuery) ([]AccessACL, error) {
	return call[[]AccessACL](ctx, c, http.MethodGet, aclPath, query.toParams(), nil)
}

// SetACL binds roles at a path. The request is validated before any network
// I/O; the endpoint silently accepts incomplete bindings otherwise.
func (c *Client) SetACL(ctx context.Context, req SetACLRequest) error {
	return c.putACL(ctx, req.toParams())
}

// DeleteACL removes role bindings at a path.
func (c *Client) DeleteACL(ctx context.Context, req DeleteACLRequest) error {
	return c.putACL(ctx, req.toParams())
}

func (c *Client) putACL(ctx context.Context, params Params) error {
	if err := validateACLParams(params); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPut, aclPath, nil, params)
	return err
}

// validateACLParams rejects ACL updates the server would accept but not
// apply: a set without roles or without any target, or a delete naming
// nothing to drop.
func validateACLParams(params Params) error {
	hasNonEmpty := func(key string) bool {
		return strings.TrimSpace(params.Get(key)) != ""
	}

	if !hasNonEmpty("path") {
		return errors.NewValidationError("path", params.Get("path"), "required",
			"acl update requires a non-empty path")
	}

	hasTarget := hasNonEmpty("users") || hasNonEmpty("groups") || hasNonEmpty("tokens")

	if isTruthy(params.Get("delete")) {
		if !hasNonEmpty("roles") && !hasTarget {
			return errors.NewValidationError("roles", "", "required",
				"acl delete requires at least one of roles, users, groups, or tokens")
		}
		return nil
	}

	if !hasNonEmpty("roles") {
		return errors.NewValidationError("roles", "", "required",
			"acl set requires non-empty roles")
	}
	if !hasTarget {
		return errors.NewValidationError("users", "", "required",
			"acl set requires at least one of users, groups, or tokens")
	}
	return nil
}

func isTruthy(value string) bool {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return false
}

// UserTokens lists a user's API tokens.
func (c *Client) UserTokens(ctx context.Context, userid string) ([]AccessUserToken, error) {
	return call[[]AccessUserToken](ctx, c, http.MethodGet, userPath(userid)+"/token", nil, nil)
}

// UserTokenCreate creates an API token for a user. The returned Value is the
// token secret, shown only in this response.
func (c *Client) UserTokenCreate(ctx context.Context, userid string, req TokenCreateRequest) (TokenValue, error) {
	return call[TokenValue](ctx, c, http.MethodPost, userPath(userid)+"/token", nil, req.toParams())
}

// UserTokenUpdate changes an existing API token.
func (c *Client) UserTokenUpdate(ctx context.Context, userid, tokenid string, req TokenUpdateRequest) error {
	_, err := c.do(ctx, http.MethodPut, tokenPath(userid, tokenid), nil, req.toParams())
	return err
}

// UserTokenDelete revokes an API token.
func (c *Client) UserTokenDelete(ctx context.Context, userid, tokenid string) error {
	_, err := c.do(ctx, http.MethodDelete, tokenPath(userid, tokenid), nil, nil)
	return err
}
