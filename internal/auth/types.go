package auth

// UserClaims represents the JWT claims for a user
type UserClaims struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	EmployeeID *int64 `json:"employee_id,omitempty"`
	IsAdmin    bool   `json:"is_admin"`
}

// RegisterRequest represents a user registration request. Creating an admin
// user requires the shared admin secret.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3"`
	Password    string `json:"password" binding:"required,min=8"`
	EmployeeID  *int64 `json:"employee_id,omitempty"`
	AdminSecret string `json:"admin_secret,omitempty"`
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	TokenType   string       `json:"token_type"`
}

// UserResponse represents user data returned to the client
type UserResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	EmployeeID *int64 `json:"employee_id,omitempty"`
	IsAdmin    bool   `json:"is_admin"`
}

// AuthError is a coded authentication error
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e AuthError) Error() string {
	return e.Message
}

// Common authentication errors
var (
	ErrInvalidCredentials = AuthError{Code: "INVALID_CREDENTIALS", Message: "invalid username or password"}
	ErrUsernameExists     = AuthError{Code: "USERNAME_EXISTS", Message: "username already registered"}
	ErrInvalidToken       = AuthError{Code: "INVALID_TOKEN", Message: "invalid or expired token"}
	ErrTokenExpired       = AuthError{Code: "TOKEN_EXPIRED", Message: "token has expired"}
	ErrUnauthorized       = AuthError{Code: "UNAUTHORIZED", Message: "unauthorized access"}
	ErrForbidden          = AuthError{Code: "FORBIDDEN", Message: "access forbidden"}
	ErrWeakPassword       = AuthError{Code: "WEAK_PASSWORD", Message: "password does not meet requirements"}
	ErrBadAdminSecret     = AuthError{Code: "BAD_ADMIN_SECRET", Message: "admin secret is invalid"}
)
