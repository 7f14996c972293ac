// Package httputil provides the JSON plumbing shared by atlas HTTP handlers.
//
// # Overview
//
//   - [DecodeJSON]: size-limited, strict request body decoding
//   - [WriteJSON]: JSON responses
//   - [WriteError]: error responses with a status derived from the error code
//   - [QueryFloat], [QueryBool]: typed query parameters
//
// # Error Responses
//
// Errors are written as
//
//	{"error": {"code": "NODE_NOT_FOUND", "message": "unknown node \"x\""}}
//
// with the HTTP status chosen by [StatusFor]: INVALID_* codes map to 400,
// not-found codes to 404, UNSUPPORTED to 422, oversized bodies to 413 and
// everything else to 500. Internal error messages are not exposed.
package httputil
