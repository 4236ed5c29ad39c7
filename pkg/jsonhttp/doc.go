// Package jsonhttp issues JSON HTTP requests, one at a time or as a settled
// batch, and turns each response into a decoded JSON object or a typed
// *OperationError.
//
// A response is accepted only when its status is exactly 200, its content type
// is application/json or an application/*+json variant, and its body is a
// non-empty JSON object. Transport failures are reported as ErrRequestFailed,
// validation failures as ErrInvalidResponse:
//
//	exec := jsonhttp.NewExecutor(jsonhttp.WithTimeout(10 * time.Second))
//	payload, err := exec.ExecuteOne(ctx, jsonhttp.JSONRequest(http.MethodPost, url, query))
//	if errors.Is(err, jsonhttp.ErrRequestFailed) {
//		// the server was never reached
//	}
package jsonhttp
