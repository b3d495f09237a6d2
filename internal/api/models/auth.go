package models

// TokenRequest asks for a development access token.
type TokenRequest struct {
	UserID string `json:"userId"`
}

// Validate checks the token request and returns field errors.
func (r *TokenRequest) Validate() []FieldError {
	var errs []FieldError
	if r.UserID == "" {
		errs = append(errs, FieldError{Field: "userId", Message: "userId is required", Code: "required"})
	}
	if len(r.UserID) > 128 {
		errs = append(errs, FieldError{Field: "userId", Message: "userId must be at most 128 characters", Code: "max_length"})
	}
	return errs
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   Timestamp `json:"expiresAt"`
}
