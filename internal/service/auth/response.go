package auth

import (
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	http_transport "github.com/oshokin/xolta-token/internal/transport/http"
)

// credentialCheck is the verdict of the credential-verification response.
type credentialCheck struct {
	Status    string
	Message   string
	ErrorCode string
}

// tokenGrant is the content of the OAuth2 token response.
type tokenGrant struct {
	AccessToken  string
	RefreshToken string
}

// decodeJSON decodes the exchange body and makes sure it is a JSON document.
func decodeJSON(exchange *Exchange) ([]byte, error) {
	if exchange == nil {
		return nil, fmt.Errorf("%w: no response captured", ErrMalformedResponse)
	}

	body, err := http_transport.DecodeBody(exchange.Body, exchange.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, exchange.URL, err)
	}

	if !utf8.Valid(body) || !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s: body is not valid JSON", ErrMalformedResponse, exchange.URL)
	}

	return body, nil
}

// parseCredentialCheck reads the provider's verdict on the submitted credentials.
// Numeric statuses are compared by their textual form.
func parseCredentialCheck(exchange *Exchange) (*credentialCheck, error) {
	body, err := decodeJSON(exchange)
	if err != nil {
		return nil, err
	}

	status := gjson.GetBytes(body, "status")
	if !status.Exists() {
		return nil, fmt.Errorf("%w: %s: status is missing", ErrMalformedResponse, exchange.URL)
	}

	return &credentialCheck{
		Status:    status.String(),
		Message:   gjson.GetBytes(body, "message").String(),
		ErrorCode: gjson.GetBytes(body, "errorCode").String(),
	}, nil
}

// parseTokenGrant extracts the tokens from the OAuth2 token response.
// The access token is required, the refresh token is optional.
func parseTokenGrant(exchange *Exchange) (*tokenGrant, error) {
	body, err := decodeJSON(exchange)
	if err != nil {
		return nil, err
	}

	accessToken := gjson.GetBytes(body, "access_token")
	if accessToken.Type != gjson.String || accessToken.String() == "" {
		return nil, fmt.Errorf("%w: %s: access_token is missing", ErrMalformedResponse, exchange.URL)
	}

	return &tokenGrant{
		AccessToken:  accessToken.String(),
		RefreshToken: gjson.GetBytes(body, "refresh_token").String(),
	}, nil
}
