package idp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"

	"github.com/tripstack/identity/internal/common"
)

// Config carries the validated user-pool settings for the confidential
// client. Construction of a CognitoClient fails fast when any field is
// missing, so an unconfigured pool never surfaces at call time.
type Config struct {
	UserPoolID   string
	Region       string
	ClientID     string
	ClientSecret string
}

func (c Config) Validate() error {
	switch {
	case c.UserPoolID == "":
		return errors.New("cognito: user pool id is required")
	case c.Region == "":
		return errors.New("cognito: region is required")
	case c.ClientID == "":
		return errors.New("cognito: client id is required")
	case c.ClientSecret == "":
		return errors.New("cognito: client secret is required")
	}
	return nil
}

// cognitoAPI is the subset of the Cognito SDK client used by the adapter.
// Narrowed to an interface so tests can substitute a fake.
type cognitoAPI interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	AdminConfirmSignUp(ctx context.Context, params *cip.AdminConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.AdminConfirmSignUpOutput, error)
	AdminAddUserToGroup(ctx context.Context, params *cip.AdminAddUserToGroupInput, optFns ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error)
	ForgotPassword(ctx context.Context, params *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, params *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, params *cip.AdminUpdateUserAttributesInput, optFns ...func(*cip.Options)) (*cip.AdminUpdateUserAttributesOutput, error)
}

// CognitoClient implements Client over AWS Cognito. Every call runs under
// a bounded timeout; a timeout classifies as common.ErrProviderUnavailable.
type CognitoClient struct {
	api         cognitoAPI
	cfg         Config
	callTimeout time.Duration
}

func NewCognitoClient(awsCfg aws.Config, cfg Config, callTimeout time.Duration) (*CognitoClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &CognitoClient{
		api:         cip.NewFromConfig(awsCfg),
		cfg:         cfg,
		callTimeout: callTimeout,
	}, nil
}

func (c *CognitoClient) secretHash(username string) (string, error) {
	return ComputeSecretHash(username, c.cfg.ClientID, c.cfg.ClientSecret)
}

func (c *CognitoClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.callTimeout)
}

func (c *CognitoClient) CreateAccount(ctx context.Context, email, password string, attributes map[string]string) (string, error) {
	hash, err := c.secretHash(email)
	if err != nil {
		return "", err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(c.cfg.ClientID),
		Username:       aws.String(email),
		Password:       aws.String(password),
		SecretHash:     aws.String(hash),
		UserAttributes: attributeList(attributes),
	})
	if err != nil {
		return "", classify(err)
	}

	return aws.ToString(out.UserSub), nil
}

func (c *CognitoClient) ConfirmAccount(ctx context.Context, username string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.api.AdminConfirmSignUp(ctx, &cip.AdminConfirmSignUpInput{
		UserPoolId: aws.String(c.cfg.UserPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		// confirming an already-confirmed account keeps the operation idempotent
		var notAuthorized *types.NotAuthorizedException
		if errors.As(err, &notAuthorized) {
			return nil
		}
		return classify(err)
	}
	return nil
}

func (c *CognitoClient) AssignGroup(ctx context.Context, username, groupName string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.api.AdminAddUserToGroup(ctx, &cip.AdminAddUserToGroupInput{
		UserPoolId: aws.String(c.cfg.UserPoolID),
		Username:   aws.String(username),
		GroupName:  aws.String(groupName),
	})
	if err != nil {
		var resourceNotFound *types.ResourceNotFoundException
		if errors.As(err, &resourceNotFound) {
			return fmt.Errorf("%w: %s", common.ErrGroupNotFound, apiMessage(err))
		}
		return classify(err)
	}
	return nil
}

func (c *CognitoClient) InitiatePasswordReset(ctx context.Context, username string) (*CodeDelivery, error) {
	hash, err := c.secretHash(username)
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.api.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId:   aws.String(c.cfg.ClientID),
		Username:   aws.String(username),
		SecretHash: aws.String(hash),
	})
	if err != nil {
		return nil, classify(err)
	}

	delivery := &CodeDelivery{}
	if d := out.CodeDeliveryDetails; d != nil {
		delivery.Destination = aws.ToString(d.Destination)
		delivery.Medium = string(d.DeliveryMedium)
		delivery.Attribute = aws.ToString(d.AttributeName)
	}
	return delivery, nil
}

func (c *CognitoClient) ConfirmPasswordReset(ctx context.Context, username, code, newPassword string) error {
	hash, err := c.secretHash(username)
	if err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err = c.api.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(c.cfg.ClientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       aws.String(hash),
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func (c *CognitoClient) UpdateAttributes(ctx context.Context, username string, attributes map[string]string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.api.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
		UserPoolId:     aws.String(c.cfg.UserPoolID),
		Username:       aws.String(username),
		UserAttributes: attributeList(attributes),
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

// attributeList converts the attribute map to the SDK shape in stable
// name order.
func attributeList(attributes map[string]string) []types.AttributeType {
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]types.AttributeType, 0, len(names))
	for _, name := range names {
		list = append(list, types.AttributeType{
			Name:  aws.String(name),
			Value: aws.String(attributes[name]),
		})
	}
	return list
}

// classify maps SDK exceptions onto the closed error taxonomy. Throttling,
// provider-side faults, timeouts and transport failures all collapse into
// common.ErrProviderUnavailable, the single retryable kind.
func classify(err error) error {
	var (
		usernameExists  *types.UsernameExistsException
		invalidPassword *types.InvalidPasswordException
		invalidParam    *types.InvalidParameterException
		userNotFound    *types.UserNotFoundException
		notConfirmed    *types.UserNotConfirmedException
		codeMismatch    *types.CodeMismatchException
		expiredCode     *types.ExpiredCodeException
		tooManyRequests *types.TooManyRequestsException
		limitExceeded   *types.LimitExceededException
		internalError   *types.InternalErrorException
	)

	switch {
	case errors.As(err, &usernameExists):
		return fmt.Errorf("%w: %s", common.ErrDuplicateAccount, apiMessage(err))
	case errors.As(err, &invalidPassword), errors.As(err, &invalidParam):
		return fmt.Errorf("%w: %s", common.ErrPolicyViolation, apiMessage(err))
	case errors.As(err, &userNotFound):
		return fmt.Errorf("%w: %s", common.ErrNotFound, apiMessage(err))
	case errors.As(err, &notConfirmed):
		return fmt.Errorf("%w: %s", common.ErrNotConfirmed, apiMessage(err))
	case errors.As(err, &codeMismatch), errors.As(err, &expiredCode):
		return fmt.Errorf("%w: %s", common.ErrCodeInvalidOrExpired, apiMessage(err))
	case errors.As(err, &tooManyRequests), errors.As(err, &limitExceeded), errors.As(err, &internalError):
		return fmt.Errorf("%w: %s", common.ErrProviderUnavailable, apiMessage(err))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %s", common.ErrProviderUnavailable, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}

	// transport-level failure
	return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
}

func apiMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}
