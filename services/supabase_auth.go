package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseAuthService talks to the Supabase Auth REST API and validates
// the JWTs it issues. Password storage, session cookies and OAuth flows
// all live on the Supabase side; this service only consumes them.
type SupabaseAuthService struct {
	baseURL   string
	anonKey   string
	jwtSecret string
	client    *http.Client
}

func NewSupabaseAuthService(baseURL, anonKey, jwtSecret string) *SupabaseAuthService {
	return &SupabaseAuthService{
		baseURL:   strings.TrimRight(baseURL, "/"),
		anonKey:   anonKey,
		jwtSecret: jwtSecret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SupabaseClaims are the JWT claims Supabase puts on access tokens
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email    string                 `json:"email"`
	Role     string                 `json:"role"`
	UserMeta map[string]interface{} `json:"user_metadata"`
	AppMeta  map[string]interface{} `json:"app_metadata"`
}

// UserID returns the Supabase auth user id (JWT subject)
func (c *SupabaseClaims) UserID() string {
	return c.Subject
}

// AuthUser is the identity-provider view of an account
type AuthUser struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
}

// Session is an issued Supabase session
type Session struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	RefreshToken string   `json:"refresh_token"`
	User         AuthUser `json:"user"`
}

// ExtractTokenFromHeader pulls the bearer token out of an Authorization header
func (s *SupabaseAuthService) ExtractTokenFromHeader(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header must be 'Bearer <token>'")
	}
	return strings.TrimSpace(parts[1]), nil
}

// ValidateToken verifies the JWT signature and expiry and returns the claims
func (s *SupabaseAuthService) ValidateToken(tokenString string) (*SupabaseClaims, error) {
	claims := &SupabaseClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// SignUp creates the Supabase auth account. The user metadata travels with
// the verification email flow so the frontend can show the name immediately.
func (s *SupabaseAuthService) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*AuthUser, error) {
	payload := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}

	var user AuthUser
	if err := s.post(ctx, "/auth/v1/signup", "", payload, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("signup returned no user id")
	}
	return &user, nil
}

// SignIn exchanges email/password for a session (password grant)
func (s *SupabaseAuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}

	var session Session
	if err := s.post(ctx, "/auth/v1/token?grant_type=password", "", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ExchangeCode exchanges an auth code from an email-verification or OAuth
// redirect for a session
func (s *SupabaseAuthService) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	payload := map[string]string{"auth_code": code}

	var session Session
	if err := s.post(ctx, "/auth/v1/token?grant_type=pkce", "", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SignOut revokes the session behind the given access token
func (s *SupabaseAuthService) SignOut(ctx context.Context, accessToken string) error {
	return s.post(ctx, "/auth/v1/logout", accessToken, map[string]string{}, nil)
}

// post sends a JSON request to the Supabase Auth API and decodes the response
func (s *SupabaseAuthService) post(ctx context.Context, path, accessToken string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+s.anonKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message   string `json:"msg"`
			ErrorDesc string `json:"error_description"`
			ErrorCode string `json:"error_code"`
		}
		_ = json.Unmarshal(respBody, &apiErr)
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.ErrorDesc
		}

		switch {
		case resp.StatusCode == http.StatusUnprocessableEntity,
			apiErr.ErrorCode == "user_already_exists",
			strings.Contains(strings.ToLower(msg), "already registered"):
			return fmt.Errorf("%w: %s", ErrConflict, msg)
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: supabase returned %d", ErrUpstreamUnavailable, resp.StatusCode)
		default:
			return fmt.Errorf("supabase auth error (%d): %s", resp.StatusCode, msg)
		}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode supabase response: %w", err)
		}
	}
	return nil
}
