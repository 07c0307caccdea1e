package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/vanguard/internal/client/accesshost"
	"github.com/dmitrijs2005/vanguard/internal/logging"
)

// AccessTokenHeaderName is the metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"

const (
	userAgent  = "Vanguard"
	deviceType = "desktop"

	defaultTimeout = 12 * time.Second
	syncStatusOK   = "OK"
)

const (
	service        = "/vanguard.v1.AuthService/"
	methodPrelogin = service + "Prelogin"
	methodLogin    = service + "Login"
	methodSync     = service + "Sync"
	methodRefresh  = service + "RefreshToken"
	methodSSO      = service + "StartSSO"
	methodDevice   = service + "RequestDeviceLogin"
	methodRegister = service + "Register"
)

// request and response field names
const (
	fieldStatus     = "status"
	fieldAccess     = "access_token"
	fieldRefresh    = "refresh_token"
	fieldKdf        = "kdf"
	fieldAuthURL    = "authorization_url"
	fieldFinger     = "fingerprint"
	fieldIdentity   = "identity_url"
	fieldAPI        = "api_url"
	fieldEmail      = "email"
	fieldPassword   = "password"
	fieldName       = "name"
	fieldRequestID  = "request_id"
	fieldUserAgent  = "user_agent"
	fieldDeviceType = "device_type"
)

// Option configures a GRPCClient.
type Option func(*GRPCClient)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *GRPCClient) { c.log = l }
}

// WithTimeout bounds every call. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *GRPCClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDialOptions appends options used when the connection is created.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

// GRPCClient implements Client over gRPC. Tokens from the last login are
// kept in memory only.
type GRPCClient struct {
	addr     string
	cc       grpc.ClientConnInterface
	closer   func() error
	log      logging.Logger
	timeout  time.Duration
	dialOpts []grpc.DialOption
	newID    func() string

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

var _ Client = (*GRPCClient)(nil)

// NewGRPCClient creates a client for the backend listening on addr. The
// connection is established lazily on the first call.
func NewGRPCClient(addr string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{
		addr:    addr,
		log:     logging.Nop(),
		timeout: defaultTimeout,
		newID:   func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(c)
	}

	dial := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, c.dialOpts...)

	conn, err := grpc.NewClient(addr, dial...)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	c.cc = conn
	c.closer = conn.Close
	return c, nil
}

// Close closes the underlying connection.
func (c *GRPCClient) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *GRPCClient) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken, c.refreshToken = access, refresh
}

// accessTokenInterceptor attaches the access token and, when the backend
// reports it expired, refreshes it once and retries the call.
func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, refresh := c.tokens()
	if access == "" {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || method == methodRefresh || refresh == "" {
		return err
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != ErrTokenExpired.Error() {
		return err
	}

	c.log.Debug(ctx, "access token expired, refreshing")
	resp, rerr := c.call(ctx, methodRefresh, &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldRefresh: structpb.NewStringValue(refresh),
	}})
	if rerr != nil {
		return rerr
	}
	newAccess, newRefresh := str(resp, fieldAccess), str(resp, fieldRefresh)
	if newAccess == "" {
		return fmt.Errorf("refresh token: %w", ErrBadResponse)
	}
	c.setTokens(newAccess, newRefresh)
	return invoker(withAccessToken(ctx, newAccess), method, req, reply, cc, opts...)
}

// call sends req to method and returns the response Struct.
func (c *GRPCClient) call(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	resp := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, method, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// invoke encodes fields and sends them to method, bounded by the client
// timeout, with errors mapped.
func (c *GRPCClient) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.invokeStruct(ctx, method, req)
}

func (c *GRPCClient) invokeStruct(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.call(ctx, method, req)
	if err != nil {
		return nil, c.mapError(err)
	}
	return resp, nil
}

func str(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// LoginAndSync runs prelogin to fetch the account's KDF parameters, logs in
// with the master password and syncs the vault.
func (c *GRPCClient) LoginAndSync(ctx context.Context, ep accesshost.Endpoints, email string, password []byte) error {
	log := c.log.With("email", logging.MaskEmail(email), "identity", ep.Identity)

	pre, err := c.invoke(ctx, methodPrelogin, map[string]any{
		fieldEmail:    email,
		fieldIdentity: ep.Identity,
	})
	if err != nil {
		return fmt.Errorf("prelogin: %w", err)
	}
	kdf, ok := pre.GetFields()[fieldKdf]
	if !ok {
		return fmt.Errorf("prelogin: %w", ErrBadResponse)
	}

	req, err := structpb.NewStruct(map[string]any{
		fieldEmail:      email,
		fieldPassword:   string(password),
		fieldIdentity:   ep.Identity,
		fieldAPI:        ep.API,
		fieldUserAgent:  userAgent,
		fieldDeviceType: deviceType,
	})
	if err != nil {
		return fmt.Errorf("encode login request: %w", err)
	}
	req.Fields[fieldKdf] = kdf

	resp, err := c.invokeStruct(ctx, methodLogin, req)
	if err != nil {
		log.Warn(ctx, "login rejected", "error", err)
		return fmt.Errorf("login: %w", err)
	}
	access := str(resp, fieldAccess)
	if access == "" {
		return fmt.Errorf("login: %w", ErrBadResponse)
	}
	c.setTokens(access, str(resp, fieldRefresh))
	log.Info(ctx, "logged in")

	synced, err := c.invoke(ctx, methodSync, map[string]any{fieldAPI: ep.API})
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if str(synced, fieldStatus) != syncStatusOK {
		return fmt.Errorf("sync: %w", ErrUnavailable)
	}
	log.Info(ctx, "vault synced")
	return nil
}

// StartSSO returns the identity provider URL to open in a browser.
func (c *GRPCClient) StartSSO(ctx context.Context, ep accesshost.Endpoints, email string) (string, error) {
	resp, err := c.invoke(ctx, methodSSO, map[string]any{
		fieldEmail:    email,
		fieldIdentity: ep.Identity,
	})
	if err != nil {
		return "", fmt.Errorf("start sso: %w", err)
	}
	u := str(resp, fieldAuthURL)
	if u == "" {
		return "", fmt.Errorf("start sso: %w", ErrBadResponse)
	}
	return u, nil
}

// RequestDeviceLogin creates an approval request identified by a fresh id.
func (c *GRPCClient) RequestDeviceLogin(ctx context.Context, ep accesshost.Endpoints, email string) (DeviceRequest, error) {
	id := c.newID()
	resp, err := c.invoke(ctx, methodDevice, map[string]any{
		fieldEmail:      email,
		fieldRequestID:  id,
		fieldIdentity:   ep.Identity,
		fieldDeviceType: deviceType,
	})
	if err != nil {
		return DeviceRequest{}, fmt.Errorf("device login: %w", err)
	}
	return DeviceRequest{ID: id, Fingerprint: str(resp, fieldFinger)}, nil
}

// Register creates an account for email.
func (c *GRPCClient) Register(ctx context.Context, ep accesshost.Endpoints, email, name string) error {
	_, err := c.invoke(ctx, methodRegister, map[string]any{
		fieldEmail:    email,
		fieldName:     name,
		fieldIdentity: ep.Identity,
		fieldAPI:      ep.API,
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
