// Package cognito wraps the Cognito user pool API behind the operations the
// auth flows need: account lifecycle, password and OTP sign-in, token
// refresh and revocation. Every call that accepts a client secret gets a
// freshly computed secret hash.
package cognito

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// API is the subset of the Cognito Identity Provider client used here.
type API interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	AdminAddUserToGroup(ctx context.Context, params *cip.AdminAddUserToGroupInput, optFns ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error)
	AdminInitiateAuth(ctx context.Context, params *cip.AdminInitiateAuthInput, optFns ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error)
	AdminGetUser(ctx context.Context, params *cip.AdminGetUserInput, optFns ...func(*cip.Options)) (*cip.AdminGetUserOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, params *cip.AdminUpdateUserAttributesInput, optFns ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error)
	AdminDeleteUser(ctx context.Context, params *cip.AdminDeleteUserInput, optFns ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error)
	RevokeToken(ctx context.Context, params *cip.RevokeTokenInput, optFns ...func(*cip.Options)) (*cip.RevokeTokenOutput, error)
	GetTokensFromRefreshToken(ctx context.Context, params *cip.GetTokensFromRefreshTokenInput, optFns ...func(*cip.Options)) (*cip.GetTokensFromRefreshTokenOutput, error)
}

// SecretSource yields the app client secret. secrets.Value satisfies it.
type SecretSource interface {
	Get() (string, error)
}

// Tokens is the session triple issued by the user pool.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
}

// SignUpParams are the attributes of a new account. Email is the username.
type SignUpParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type SignUpResult struct {
	Sub       string
	Confirmed bool
	// Session is set when the pool starts an OTP challenge right away.
	Session string
}

// Account is what the admin view of a user exposes to callers.
type Account struct {
	Username string
	Status   string
	Enabled  bool
}

// Standard attribute names.
const (
	AttrGivenName     = "given_name"
	AttrFamilyName    = "family_name"
	AttrEmail         = "email"
	AttrEmailVerified = "email_verified"
)

type Client struct {
	api        API
	clientID   string
	userPoolID string
	secret     SecretSource
}

func NewClient(api API, clientID, userPoolID string, secret SecretSource) *Client {
	return &Client{api: api, clientID: clientID, userPoolID: userPoolID, secret: secret}
}

func (c *Client) secretHash(username string) (string, error) {
	s, err := c.secret.Get()
	if err != nil {
		return "", err
	}
	return SecretHash(username, c.clientID, s), nil
}

func (c *Client) SignUp(ctx context.Context, p SignUpParams) (*SignUpResult, error) {
	hash, err := c.secretHash(p.Email)
	if err != nil {
		return nil, err
	}

	out, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(c.clientID),
		Username:   aws.String(p.Email),
		Password:   aws.String(p.Password),
		SecretHash: aws.String(hash),
		UserAttributes: []types.AttributeType{
			{Name: aws.String(AttrGivenName), Value: aws.String(p.FirstName)},
			{Name: aws.String(AttrFamilyName), Value: aws.String(p.LastName)},
		},
	})
	if err != nil {
		return nil, mapError("sign up", err)
	}

	return &SignUpResult{
		Sub:       aws.ToString(out.UserSub),
		Confirmed: out.UserConfirmed,
		Session:   aws.ToString(out.Session),
	}, nil
}

func (c *Client) AddUserToGroup(ctx context.Context, username, group string) error {
	_, err := c.api.AdminAddUserToGroup(ctx, &cip.AdminAddUserToGroupInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(username),
		GroupName:  aws.String(group),
	})
	return mapError("add user to group", err)
}

// SignIn runs the admin password flow.
func (c *Client) SignIn(ctx context.Context, username, password string) (*Tokens, error) {
	hash, err := c.secretHash(username)
	if err != nil {
		return nil, err
	}

	out, err := c.api.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		UserPoolId: aws.String(c.userPoolID),
		ClientId:   aws.String(c.clientID),
		AuthFlow:   types.AuthFlowTypeAdminUserPasswordAuth,
		AuthParameters: map[string]string{
			"USERNAME":    username,
			"PASSWORD":    password,
			"SECRET_HASH": hash,
		},
	})
	if err != nil {
		return nil, mapError("sign in", err)
	}
	return tokensFrom(out.AuthenticationResult)
}

// ConfirmSignUp confirms an account with the emailed code and returns the
// follow-up session, if the pool issued one.
func (c *Client) ConfirmSignUp(ctx context.Context, username, code, session string) (string, error) {
	hash, err := c.secretHash(username)
	if err != nil {
		return "", err
	}

	in := &cip.ConfirmSignUpInput{
		ClientId:           aws.String(c.clientID),
		Username:           aws.String(username),
		ConfirmationCode:   aws.String(code),
		ForceAliasCreation: true,
		SecretHash:         aws.String(hash),
	}
	if session != "" {
		in.Session = aws.String(session)
	}

	out, err := c.api.ConfirmSignUp(ctx, in)
	if err != nil {
		return "", mapError("confirm sign up", err)
	}
	return aws.ToString(out.Session), nil
}

// CompleteEmailOTP finishes a choice-based sign-in by answering the EMAIL_OTP
// challenge with code.
func (c *Client) CompleteEmailOTP(ctx context.Context, username, code, session string) (*Tokens, error) {
	hash, err := c.secretHash(username)
	if err != nil {
		return nil, err
	}

	in := &cip.AdminInitiateAuthInput{
		UserPoolId: aws.String(c.userPoolID),
		ClientId:   aws.String(c.clientID),
		AuthFlow:   types.AuthFlowType("USER_AUTH"),
		AuthParameters: map[string]string{
			"USERNAME":            username,
			"EMAIL_OTP":           code,
			"SECRET_HASH":         hash,
			"PREFERRED_CHALLENGE": "EMAIL_OTP",
		},
	}
	if session != "" {
		in.Session = aws.String(session)
	}

	out, err := c.api.AdminInitiateAuth(ctx, in)
	if err != nil {
		return nil, mapError("complete email otp", err)
	}
	return tokensFrom(out.AuthenticationResult)
}

func (c *Client) GetUser(ctx context.Context, username string) (*Account, error) {
	out, err := c.api.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return nil, mapError("get user", err)
	}
	return &Account{
		Username: aws.ToString(out.Username),
		Status:   string(out.UserStatus),
		Enabled:  out.Enabled,
	}, nil
}

// UpdateUserAttributes pushes attrs to the pool. An empty map is a no-op.
func (c *Client) UpdateUserAttributes(ctx context.Context, username string, attrs map[string]string) error {
	if len(attrs) == 0 {
		return nil
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]types.AttributeType, 0, len(names))
	for _, name := range names {
		list = append(list, types.AttributeType{Name: aws.String(name), Value: aws.String(attrs[name])})
	}

	_, err := c.api.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
		UserPoolId:     aws.String(c.userPoolID),
		Username:       aws.String(username),
		UserAttributes: list,
	})
	return mapError("update user attributes", err)
}

func (c *Client) DeleteUser(ctx context.Context, username string) error {
	_, err := c.api.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(username),
	})
	return mapError("delete user", err)
}

// RevokeToken revokes a refresh token and the access tokens minted from it.
func (c *Client) RevokeToken(ctx context.Context, refreshToken string) error {
	secret, err := c.secret.Get()
	if err != nil {
		return err
	}
	_, err = c.api.RevokeToken(ctx, &cip.RevokeTokenInput{
		ClientId:     aws.String(c.clientID),
		ClientSecret: aws.String(secret),
		Token:        aws.String(refreshToken),
	})
	return mapError("revoke token", err)
}

// RefreshTokens exchanges a refresh token for a new triple. A response
// without all three tokens is rejected so callers never replace a subset.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (*Tokens, error) {
	secret, err := c.secret.Get()
	if err != nil {
		return nil, err
	}
	out, err := c.api.GetTokensFromRefreshToken(ctx, &cip.GetTokensFromRefreshTokenInput{
		ClientId:     aws.String(c.clientID),
		ClientSecret: aws.String(secret),
		RefreshToken: aws.String(refreshToken),
	})
	if err != nil {
		return nil, mapError("refresh tokens", err)
	}
	return tokensFrom(out.AuthenticationResult)
}

func tokensFrom(r *types.AuthenticationResultType) (*Tokens, error) {
	if r == nil {
		return nil, ErrIncompleteTokens
	}
	t := &Tokens{
		AccessToken:  aws.ToString(r.AccessToken),
		IDToken:      aws.ToString(r.IdToken),
		RefreshToken: aws.ToString(r.RefreshToken),
	}
	if t.AccessToken == "" || t.IDToken == "" || t.RefreshToken == "" {
		return nil, ErrIncompleteTokens
	}
	return t, nil
}
