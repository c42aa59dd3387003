package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type authenticator interface {
	Authenticate(context.Context) error
	BearerToken() string
}

type AuthBearerRoundTripper struct {
	next          http.RoundTripper
	authenticator authenticator
}

func NewAuthBearerRoundTripper(
	next http.RoundTripper,
	authenticator authenticator,
) AuthBearerRoundTripper {
	return AuthBearerRoundTripper{
		next:          next,
		authenticator: authenticator,
	}
}

func (rt AuthBearerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.authenticator.BearerToken() == "" {
		if err := rt.authenticator.Authenticate(req.Context()); err != nil {
			return nil, fmt.Errorf("authenticator.Authenticate: %w", err)
		}
	}

	// RoundTrip не должен менять исходный запрос
	authorized := req.Clone(req.Context())
	rt.setAuthorizationHeader(authorized)

	resp, err := rt.next.RoundTrip(authorized)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// повторяем один раз, если тело можно перечитать
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	resp.Body.Close()

	if err = rt.authenticator.Authenticate(req.Context()); err != nil {
		return nil, fmt.Errorf("authenticator.Authenticate: %w", err)
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		if retry.Body, err = req.GetBody(); err != nil {
			return nil, fmt.Errorf("req.GetBody: %w", err)
		}
	}

	rt.setAuthorizationHeader(retry)

	return rt.next.RoundTrip(retry) //nolint:wrapcheck
}

func (rt AuthBearerRoundTripper) setAuthorizationHeader(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+rt.authenticator.BearerToken())
}

var ErrStaticTokenRejected = errors.New("static token rejected")

// StaticToken: аутентификатор с заранее выданным токеном.
type StaticToken string

func (t StaticToken) Authenticate(context.Context) error {
	if t == "" {
		return errors.New("static token is empty")
	}

	return ErrStaticTokenRejected
}

func (t StaticToken) BearerToken() string {
	return string(t)
}
