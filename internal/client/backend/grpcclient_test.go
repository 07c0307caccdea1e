package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/vanguard/internal/client/accesshost"
	"github.com/dmitrijs2005/vanguard/internal/logging"
)

/*************
 * Fake connection
 *************/

type fakeConn struct {
	requests map[string]*structpb.Struct
	replies  map[string]map[string]any
	errs     map[string]error
	calls    []string
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		requests: map[string]*structpb.Struct{},
		replies:  map[string]map[string]any{},
		errs:     map[string]error{},
	}
}

func (f *fakeConn) Invoke(_ context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	f.calls = append(f.calls, method)
	f.requests[method] = args.(*structpb.Struct)
	if err := f.errs[method]; err != nil {
		return err
	}
	if r, ok := f.replies[method]; ok {
		s, err := structpb.NewStruct(r)
		if err != nil {
			return err
		}
		proto.Merge(reply.(*structpb.Struct), s)
	}
	return nil
}

func (f *fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("streams not supported")
}

func newTestClient(f *fakeConn) *GRPCClient {
	return &GRPCClient{
		cc:      f,
		log:     logging.Nop(),
		timeout: defaultTimeout,
		newID:   func() string { return "req-1" },
	}
}

var testEndpoints = accesshost.Endpoints{
	Base:     "https://vault.example.com",
	API:      "https://vault.example.com/api",
	Identity: "https://vault.example.com/identity",
}

/*************
 * accessTokenInterceptor tests
 *************/

func TestInterceptor_RefreshesTokenOnExpiredAndRetries(t *testing.T) {
	f := newFakeConn()
	f.replies[methodRefresh] = map[string]any{fieldAccess: "A2", fieldRefresh: "R2"}
	c := newTestClient(f)
	c.setTokens("A1", "R1")

	callCount := 0
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		callCount++
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(AccessTokenHeaderName)
		require.Len(t, toks, 1)

		if callCount == 1 {
			require.Equal(t, "A1", toks[0])
			return status.Error(codes.Unauthenticated, ErrTokenExpired.Error())
		}
		require.Equal(t, "A2", toks[0])
		return nil
	}

	err := c.accessTokenInterceptor(context.Background(), methodSync, nil, nil, nil, invoker)
	require.NoError(t, err)
	require.Equal(t, 2, callCount)
	access, refresh := c.tokens()
	require.Equal(t, "A2", access)
	require.Equal(t, "R2", refresh)
	require.Equal(t, "R1", str(f.requests[methodRefresh], fieldRefresh))
}

func TestInterceptor_NoRefreshIfNoRefreshToken(t *testing.T) {
	f := newFakeConn()
	c := newTestClient(f)
	c.setTokens("A1", "")

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Unauthenticated, ErrTokenExpired.Error())
	}

	err := c.accessTokenInterceptor(context.Background(), methodSync, nil, nil, nil, invoker)
	require.Error(t, err)
	require.Empty(t, f.calls)
}

func TestInterceptor_WithoutTokenSendsNoMetadata(t *testing.T) {
	c := newTestClient(newFakeConn())
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(AccessTokenHeaderName))
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), methodPrelogin, nil, nil, nil, invoker))
}

func TestInterceptor_UnauthenticatedButDifferentMessage_NoRefresh(t *testing.T) {
	f := newFakeConn()
	c := newTestClient(f)
	c.setTokens("X", "R")
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Unauthenticated, "some other reason")
	}
	err := c.accessTokenInterceptor(context.Background(), methodSync, nil, nil, nil, invoker)
	require.Error(t, err)
	require.Empty(t, f.calls)
}

func TestInterceptor_RefreshResponseWithoutToken(t *testing.T) {
	f := newFakeConn()
	f.replies[methodRefresh] = map[string]any{}
	c := newTestClient(f)
	c.setTokens("A1", "R1")
	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		return status.Error(codes.Unauthenticated, ErrTokenExpired.Error())
	}
	err := c.accessTokenInterceptor(context.Background(), methodSync, nil, nil, nil, invoker)
	require.ErrorIs(t, err, ErrBadResponse)
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.Unauthenticated, "x")))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.PermissionDenied, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.NoError(t, c.mapError(nil))
	e := errors.New("plain")
	require.ErrorContains(t, c.mapError(e), "rpc error:")
}

/*************
 * LoginAndSync tests
 *************/

func loginReplies(f *fakeConn) {
	f.replies[methodPrelogin] = map[string]any{fieldKdf: map[string]any{"type": "pbkdf2", "iterations": float64(600000)}}
	f.replies[methodLogin] = map[string]any{fieldAccess: "A", fieldRefresh: "R"}
	f.replies[methodSync] = map[string]any{fieldStatus: "OK"}
}

func TestLoginAndSync_OK(t *testing.T) {
	f := newFakeConn()
	loginReplies(f)
	c := newTestClient(f)

	err := c.LoginAndSync(context.Background(), testEndpoints, "user@example.com", []byte("secret"))
	require.NoError(t, err)

	assert.Equal(t, []string{methodPrelogin, methodLogin, methodSync}, f.calls)
	login := f.requests[methodLogin]
	assert.Equal(t, "user@example.com", str(login, fieldEmail))
	assert.Equal(t, "secret", str(login, fieldPassword))
	assert.Equal(t, testEndpoints.Identity, str(login, fieldIdentity))
	assert.Equal(t, testEndpoints.API, str(login, fieldAPI))
	assert.Equal(t, float64(600000), login.GetFields()[fieldKdf].GetStructValue().GetFields()["iterations"].GetNumberValue())
	assert.Equal(t, testEndpoints.API, str(f.requests[methodSync], fieldAPI))

	access, refresh := c.tokens()
	assert.Equal(t, "A", access)
	assert.Equal(t, "R", refresh)
}

func TestLoginAndSync_PreloginWithoutKdf(t *testing.T) {
	f := newFakeConn()
	loginReplies(f)
	f.replies[methodPrelogin] = map[string]any{}
	c := newTestClient(f)

	err := c.LoginAndSync(context.Background(), testEndpoints, "user@example.com", []byte("secret"))
	require.ErrorIs(t, err, ErrBadResponse)
	assert.Equal(t, []string{methodPrelogin}, f.calls)
}

func TestLoginAndSync_WrongPassword(t *testing.T) {
	f := newFakeConn()
	loginReplies(f)
	f.errs[methodLogin] = status.Error(codes.Unauthenticated, "invalid credentials")
	c := newTestClient(f)

	err := c.LoginAndSync(context.Background(), testEndpoints, "user@example.com", []byte("wrong"))
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.NotContains(t, err.Error(), "wrong")
	access, _ := c.tokens()
	assert.Empty(t, access)
}

func TestLoginAndSync_ServerDown(t *testing.T) {
	f := newFakeConn()
	f.errs[methodPrelogin] = status.Error(codes.Unavailable, "down")
	c := newTestClient(f)

	err := c.LoginAndSync(context.Background(), testEndpoints, "user@example.com", []byte("secret"))
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLoginAndSync_SyncNotOK(t *testing.T) {
	f := newFakeConn()
	loginReplies(f)
	f.replies[methodSync] = map[string]any{fieldStatus: "DEGRADED"}
	c := newTestClient(f)

	err := c.LoginAndSync(context.Background(), testEndpoints, "user@example.com", []byte("secret"))
	require.ErrorIs(t, err, ErrUnavailable)
}

/*************
 * SSO / device / register tests
 *************/

func TestStartSSO(t *testing.T) {
	f := newFakeConn()
	f.replies[methodSSO] = map[string]any{fieldAuthURL: "https://idp.example.com/authorize"}
	c := newTestClient(f)

	u, err := c.StartSSO(context.Background(), testEndpoints, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://idp.example.com/authorize", u)
	assert.Equal(t, "user@example.com", str(f.requests[methodSSO], fieldEmail))
}

func TestStartSSO_MissingURL(t *testing.T) {
	f := newFakeConn()
	c := newTestClient(f)

	_, err := c.StartSSO(context.Background(), testEndpoints, "user@example.com")
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestRequestDeviceLogin(t *testing.T) {
	f := newFakeConn()
	f.replies[methodDevice] = map[string]any{fieldFinger: "alpha-bravo-charlie"}
	c := newTestClient(f)

	req, err := c.RequestDeviceLogin(context.Background(), testEndpoints, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, DeviceRequest{ID: "req-1", Fingerprint: "alpha-bravo-charlie"}, req)
	assert.Equal(t, "req-1", str(f.requests[methodDevice], fieldRequestID))
}

func TestRegister(t *testing.T) {
	f := newFakeConn()
	c := newTestClient(f)

	require.NoError(t, c.Register(context.Background(), testEndpoints, "new@example.com", "Newcomer"))
	req := f.requests[methodRegister]
	assert.Equal(t, "new@example.com", str(req, fieldEmail))
	assert.Equal(t, "Newcomer", str(req, fieldName))
}

func TestRegister_Conflict(t *testing.T) {
	f := newFakeConn()
	f.errs[methodRegister] = status.Error(codes.AlreadyExists, "taken")
	c := newTestClient(f)

	err := c.Register(context.Background(), testEndpoints, "new@example.com", "")
	require.ErrorContains(t, err, "rpc error:")
	assert.Equal(t, codes.AlreadyExists, status.Code(errors.Unwrap(errors.Unwrap(err))))
}
