package mailid

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/tripstack/identity/internal/common"
)

type fakeSESAPI struct {
	get    func(ctx context.Context, in *sesv2.GetEmailIdentityInput) (*sesv2.GetEmailIdentityOutput, error)
	create func(ctx context.Context, in *sesv2.CreateEmailIdentityInput) (*sesv2.CreateEmailIdentityOutput, error)
}

func (f *fakeSESAPI) GetEmailIdentity(ctx context.Context, in *sesv2.GetEmailIdentityInput, _ ...func(*sesv2.Options)) (*sesv2.GetEmailIdentityOutput, error) {
	return f.get(ctx, in)
}

func (f *fakeSESAPI) CreateEmailIdentity(ctx context.Context, in *sesv2.CreateEmailIdentityInput, _ ...func(*sesv2.Options)) (*sesv2.CreateEmailIdentityOutput, error) {
	return f.create(ctx, in)
}

func newTestManager(api sesAPI) *SESManager {
	return &SESManager{api: api, callTimeout: time.Second}
}

func TestVerificationStatus_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		remote types.VerificationStatus
		want   Status
	}{
		{"success", types.VerificationStatusSuccess, StatusSucceeded},
		{"pending", types.VerificationStatusPending, StatusPending},
		{"not started", types.VerificationStatusNotStarted, StatusPending},
		{"failed", types.VerificationStatusFailed, StatusFailed},
		{"temporary failure", types.VerificationStatusTemporaryFailure, StatusFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeSESAPI{
				get: func(_ context.Context, in *sesv2.GetEmailIdentityInput) (*sesv2.GetEmailIdentityOutput, error) {
					if aws.ToString(in.EmailIdentity) != "jane@x.com" {
						t.Fatalf("unexpected identity: %v", in.EmailIdentity)
					}
					return &sesv2.GetEmailIdentityOutput{VerificationStatus: tc.remote}, nil
				},
			}
			got, err := newTestManager(api).VerificationStatus(context.Background(), "jane@x.com")
			if err != nil {
				t.Fatalf("VerificationStatus error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("status = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestVerificationStatus_NotFoundIsNotAnError(t *testing.T) {
	api := &fakeSESAPI{
		get: func(context.Context, *sesv2.GetEmailIdentityInput) (*sesv2.GetEmailIdentityOutput, error) {
			return nil, &types.NotFoundException{Message: aws.String("unknown identity")}
		},
	}
	got, err := newTestManager(api).VerificationStatus(context.Background(), "new@x.com")
	if err != nil {
		t.Fatalf("VerificationStatus error: %v", err)
	}
	if got != StatusNotFound {
		t.Fatalf("status = %q, want %q", got, StatusNotFound)
	}
}

func TestVerificationStatus_RemoteFailure(t *testing.T) {
	api := &fakeSESAPI{
		get: func(context.Context, *sesv2.GetEmailIdentityInput) (*sesv2.GetEmailIdentityOutput, error) {
			return nil, errors.New("connection refused")
		},
	}
	_, err := newTestManager(api).VerificationStatus(context.Background(), "jane@x.com")
	if !errors.Is(err, common.ErrProviderUnavailable) {
		t.Fatalf("want ErrProviderUnavailable, got %v", err)
	}
}

func TestRegisterIdentity(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := &fakeSESAPI{
			create: func(_ context.Context, in *sesv2.CreateEmailIdentityInput) (*sesv2.CreateEmailIdentityOutput, error) {
				if aws.ToString(in.EmailIdentity) != "new@x.com" {
					t.Fatalf("unexpected identity: %v", in.EmailIdentity)
				}
				return &sesv2.CreateEmailIdentityOutput{}, nil
			},
		}
		if err := newTestManager(api).RegisterIdentity(context.Background(), "new@x.com"); err != nil {
			t.Fatalf("RegisterIdentity error: %v", err)
		}
	})

	t.Run("already registered is a no-op", func(t *testing.T) {
		api := &fakeSESAPI{
			create: func(context.Context, *sesv2.CreateEmailIdentityInput) (*sesv2.CreateEmailIdentityOutput, error) {
				return nil, &types.AlreadyExistsException{Message: aws.String("exists")}
			},
		}
		if err := newTestManager(api).RegisterIdentity(context.Background(), "jane@x.com"); err != nil {
			t.Fatalf("already-registered should succeed, got %v", err)
		}
	})

	t.Run("remote failure", func(t *testing.T) {
		api := &fakeSESAPI{
			create: func(context.Context, *sesv2.CreateEmailIdentityInput) (*sesv2.CreateEmailIdentityOutput, error) {
				return nil, errors.New("throttled")
			},
		}
		err := newTestManager(api).RegisterIdentity(context.Background(), "jane@x.com")
		if !errors.Is(err, common.ErrProviderUnavailable) {
			t.Fatalf("want ErrProviderUnavailable, got %v", err)
		}
	})
}
