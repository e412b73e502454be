package cognito

import (
	"context"

	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

// fakeAPI records the last input of each call and returns canned outputs.
type fakeAPI struct {
	signUpIn  *cip.SignUpInput
	signUpOut *cip.SignUpOutput
	signUpErr error

	confirmIn  *cip.ConfirmSignUpInput
	confirmOut *cip.ConfirmSignUpOutput
	confirmErr error

	groupIns []*cip.AdminAddUserToGroupInput
	groupErr error

	authIn  *cip.AdminInitiateAuthInput
	authOut *cip.AdminInitiateAuthOutput
	authErr error

	getIn  *cip.AdminGetUserInput
	getOut *cip.AdminGetUserOutput
	getErr error

	updateIn  *cip.AdminUpdateUserAttributesInput
	updateErr error
	updates   int

	deleteIn  *cip.AdminDeleteUserInput
	deleteErr error

	revokeIn  *cip.RevokeTokenInput
	revokeErr error

	refreshIn  *cip.GetTokensFromRefreshTokenInput
	refreshOut *cip.GetTokensFromRefreshTokenOutput
	refreshErr error
}

func (f *fakeAPI) SignUp(_ context.Context, in *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	f.signUpIn = in
	return f.signUpOut, f.signUpErr
}

func (f *fakeAPI) ConfirmSignUp(_ context.Context, in *cip.ConfirmSignUpInput, _ ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error) {
	f.confirmIn = in
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	if f.confirmOut == nil {
		return &cip.ConfirmSignUpOutput{}, nil
	}
	return f.confirmOut, nil
}

func (f *fakeAPI) AdminAddUserToGroup(_ context.Context, in *cip.AdminAddUserToGroupInput, _ ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error) {
	f.groupIns = append(f.groupIns, in)
	return &cip.AdminAddUserToGroupOutput{}, f.groupErr
}

func (f *fakeAPI) AdminInitiateAuth(_ context.Context, in *cip.AdminInitiateAuthInput, _ ...func(*cip.Options)) (*cip.AdminInitiateAuthOutput, error) {
	f.authIn = in
	return f.authOut, f.authErr
}

func (f *fakeAPI) AdminGetUser(_ context.Context, in *cip.AdminGetUserInput, _ ...func(*cip.Options)) (*cip.AdminGetUserOutput, error) {
	f.getIn = in
	return f.getOut, f.getErr
}

func (f *fakeAPI) AdminUpdateUserAttributes(_ context.Context, in *cip.AdminUpdateUserAttributesInput, _ ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error) {
	f.updates++
	f.updateIn = in
	return &cip.AdminUpdateUserAttributesOutput{}, f.updateErr
}

func (f *fakeAPI) AdminDeleteUser(_ context.Context, in *cip.AdminDeleteUserInput, _ ...func(*cip.Options)) (*cip.AdminDeleteUserOutput, error) {
	f.deleteIn = in
	return &cip.AdminDeleteUserOutput{}, f.deleteErr
}

func (f *fakeAPI) RevokeToken(_ context.Context, in *cip.RevokeTokenInput, _ ...func(*cip.Options)) (*cip.RevokeTokenOutput, error) {
	f.revokeIn = in
	return &cip.RevokeTokenOutput{}, f.revokeErr
}

func (f *fakeAPI) GetTokensFromRefreshToken(_ context.Context, in *cip.GetTokensFromRefreshTokenInput, _ ...func(*cip.Options)) (*cip.GetTokensFromRefreshTokenOutput, error) {
	f.refreshIn = in
	return f.refreshOut, f.refreshErr
}

type staticSecret struct {
	v   string
	err error
}

func (s staticSecret) Get() (string, error) { return s.v, s.err }
