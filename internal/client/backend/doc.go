// Package backend talks to the vault backend on behalf of the onboarding
// flow.
//
// # Overview
//
// Client is the transport-agnostic contract used by the CLI: password login
// followed by a vault sync, SSO start, login-with-device requests and account
// registration. GRPCClient implements it over a gRPC connection. Requests and
// responses are google.protobuf.Struct messages, so no generated stubs are
// needed on either side.
//
// # Error Handling
//
// gRPC status codes are mapped to sentinel errors that callers match with
// errors.Is: ErrUnauthorized and ErrUnavailable. Anything else is returned
// wrapped as "rpc error".
//
// The master password is sent only in the Login request and is never logged.
package backend
