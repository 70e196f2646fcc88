package mailid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/tripstack/identity/internal/common"
)

// sesAPI is the subset of the SESv2 SDK client used by the adapter.
type sesAPI interface {
	GetEmailIdentity(ctx context.Context, params *sesv2.GetEmailIdentityInput, optFns ...func(*sesv2.Options)) (*sesv2.GetEmailIdentityOutput, error)
	CreateEmailIdentity(ctx context.Context, params *sesv2.CreateEmailIdentityInput, optFns ...func(*sesv2.Options)) (*sesv2.CreateEmailIdentityOutput, error)
}

// SESManager implements Manager over AWS SESv2.
type SESManager struct {
	api         sesAPI
	callTimeout time.Duration
}

func NewSESManager(awsCfg aws.Config, callTimeout time.Duration) *SESManager {
	return &SESManager{
		api:         sesv2.NewFromConfig(awsCfg),
		callTimeout: callTimeout,
	}
}

func (m *SESManager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.callTimeout)
}

func (m *SESManager) VerificationStatus(ctx context.Context, email string) (Status, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	out, err := m.api.GetEmailIdentity(ctx, &sesv2.GetEmailIdentityInput{
		EmailIdentity: aws.String(email),
	})
	if err != nil {
		var notFound *types.NotFoundException
		if errors.As(err, &notFound) {
			return StatusNotFound, nil
		}
		return "", fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}

	switch out.VerificationStatus {
	case types.VerificationStatusSuccess:
		return StatusSucceeded, nil
	case types.VerificationStatusFailed, types.VerificationStatusTemporaryFailure:
		return StatusFailed, nil
	default:
		// PENDING and NOT_STARTED both mean verification has not concluded
		return StatusPending, nil
	}
}

func (m *SESManager) RegisterIdentity(ctx context.Context, email string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	_, err := m.api.CreateEmailIdentity(ctx, &sesv2.CreateEmailIdentityInput{
		EmailIdentity: aws.String(email),
	})
	if err != nil {
		var alreadyExists *types.AlreadyExistsException
		if errors.As(err, &alreadyExists) {
			return nil
		}
		return fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
	return nil
}
