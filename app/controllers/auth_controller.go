package controllers

import (
	"time"

	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/pkg/ctx"
)

type AuthController struct {
	auth   *services.AuthService
	ttl    time.Duration
	secure bool
}

// Signup handles POST /api/auth/signup.
func (ac *AuthController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := ac.auth.Signup(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(user)
}

// Signin handles POST /api/auth/signin. The token is returned in the body
// and set as an HttpOnly cookie.
func (ac *AuthController) Signin(c *ctx.Context) {
	var in services.SigninInput
	if !c.BindJSON(&in) {
		return
	}
	session, err := ac.auth.Signin(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetSessionCookie(session.Token, ac.ttl, ac.secure)
	c.Success(session)
}

// Signout handles POST /api/auth/signout.
func (ac *AuthController) Signout(c *ctx.Context) {
	c.ClearSessionCookie()
	c.Message("Signed out")
}

// Session handles GET /api/auth/session.
func (ac *AuthController) Session(c *ctx.Context) {
	user, err := ac.auth.Current(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}
