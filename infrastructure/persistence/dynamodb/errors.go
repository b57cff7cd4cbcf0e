package dynamodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"paperindex/pkg/errors"
)

// transientCodes are DynamoDB error codes worth retrying.
var transientCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
	"InternalServerError":                    true,
	"ServiceUnavailable":                     true,
	"TransactionInProgressException":         true,
}

// classifyError maps an SDK error onto the application error taxonomy. Only
// transient failures become StoreUnavailable; a timed-out call is transient,
// never evidence that data is absent.
func classifyError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.NewStoreUnavailableError(operation, err)
	}

	var maxAttempts *retry.MaxAttemptsError
	if stderrors.As(err, &maxAttempts) {
		return errors.NewStoreUnavailableError(operation, err)
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		if transientCodes[apiErr.ErrorCode()] {
			return errors.NewStoreUnavailableError(operation, err)
		}
		return errors.NewInternalError(fmt.Sprintf("store operation '%s' failed: %s", operation, apiErr.ErrorCode())).
			WithCode(apiErr.ErrorCode()).
			WithCause(err)
	}

	var sendErr *smithyhttp.RequestSendError
	var netErr net.Error
	if stderrors.As(err, &sendErr) || stderrors.As(err, &netErr) {
		return errors.NewStoreUnavailableError(operation, err)
	}

	return errors.NewInternalError(fmt.Sprintf("store operation '%s' failed", operation)).WithCause(err)
}

func isErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	return stderrors.As(err, &apiErr) && apiErr.ErrorCode() == code
}
