package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/emilianohg/sitecrew/internal/models"
)

// SessionCookie is the cookie the backend issues at login.
const SessionCookie = "session"

type LoginResult struct {
	Identity models.Identity
	Token    string
	// Cookie is "name=value", ready for a Cookie header.
	Cookie string
}

type loginResponse struct {
	Msg   string          `json:"msg"`
	User  models.Identity `json:"user"`
	Token string          `json:"token"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	}

	resp, err := c.send(ctx, http.MethodPost, "/login", nil, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out loginResponse
	if err := decodeBody(resp, &out); err != nil {
		return nil, err
	}

	return &LoginResult{
		Identity: out.User,
		Token:    out.Token,
		Cookie:   sessionCookie(resp.Cookies()),
	}, nil
}

func sessionCookie(cookies []*http.Cookie) string {
	for _, ck := range cookies {
		if ck.Name == SessionCookie {
			return ck.Name + "=" + ck.Value
		}
	}
	if len(cookies) > 0 {
		return cookies[0].Name + "=" + cookies[0].Value
	}
	return ""
}

type RegisterInput struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Phone    *string `json:"phone"`
	Skills   *string `json:"skills"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) error {
	return c.post(ctx, "/register", in, nil)
}

// Logout ends the backend session. The local session is cleared by the
// caller whatever this returns.
func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/logout", nil, nil)
}
