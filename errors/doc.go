/*
Package errors provides semantic error types for the docstore library.

Drivers translate client-library failures into these types so that callers can
branch on meaning rather than on HTTP status codes or SDK exception types.

Common Errors:

	var (
	    ErrNotFound        = errors.New("not found")
	    ErrAlreadyExists   = errors.New("already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrUnsupported     = errors.New("operation not supported")
	    ErrNotInitialized  = errors.New("client not initialized")
	)

Usage:

	item, err := container.ReadItem(ctx, "123")
	if err != nil {
	    if errors.IsNotFound(err) {
	        return nil, false, nil
	    }
	    return nil, false, err
	}

	err := errors.NewNotFoundError("item", "123")
	err := errors.NewValidationError("operator", "unsupported operator")
	err := errors.NewRemoteError("query items", sdkErr)

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
