// Package ssm resolves secrets from AWS Systems Manager Parameter Store.
// Values are fetched in a single GetParameters call and written into the
// destinations the caller provides, with SecureString decryption enabled.
package ssm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ErrParamsNotFound is returned when one or more requested parameters do not
// exist in Parameter Store.
var ErrParamsNotFound = errors.New("params not found")

// API is the subset of the SSM client used by this package.
type API interface {
	GetParameters(ctx context.Context, params *ssm.GetParametersInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
}

// Resolve fetches every parameter named in dest and stores its decrypted
// value through the corresponding pointer. Missing parameters cause
// ErrParamsNotFound listing the missing names.
func Resolve(ctx context.Context, api API, dest map[string]*string) error {
	if len(dest) == 0 {
		return nil
	}

	names := make([]string, 0, len(dest))
	for name := range dest {
		names = append(names, name)
	}

	out, err := api.GetParameters(ctx, &ssm.GetParametersInput{
		Names:          names,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("ssm get parameters: %w", err)
	}

	if len(out.InvalidParameters) > 0 {
		return fmt.Errorf("%w: %s", ErrParamsNotFound, strings.Join(out.InvalidParameters, ", "))
	}

	for _, param := range out.Parameters {
		if param.Name == nil || param.Value == nil {
			continue
		}
		if ptr, ok := dest[*param.Name]; ok {
			*ptr = *param.Value
		}
	}

	return nil
}
