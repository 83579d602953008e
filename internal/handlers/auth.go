package handlers

import (
	stderrors "errors"

	"github.com/flixsy/backend/internal/auth"
	"github.com/flixsy/backend/internal/errors"
	"github.com/flixsy/backend/internal/metrics"
	"github.com/flixsy/backend/internal/util"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and returns it with an established session.
func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "username, email and password are required")
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		var verrs auth.ValidationErrors
		switch {
		case stderrors.As(err, &verrs):
			util.RespondWithAPIError(c, errors.ValidationError("", verrs.Error()))
		case stderrors.Is(err, auth.ErrUserExists):
			util.RespondWithAPIError(c, errors.Conflict("username or email already exists"))
		default:
			util.RespondError(c, err)
		}
		return
	}

	metrics.Get().UsersRegistered.Inc()
	util.RespondCreated(c, "registration successful", gin.H{
		"user":  result.User,
		"token": result.Session.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates by email and password.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "email and password are required")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case stderrors.Is(err, auth.ErrInvalidCredentials):
			metrics.Get().LoginsTotal.WithLabelValues("invalid").Inc()
			util.RespondUnauthorized(c, "invalid email or password")
		case stderrors.Is(err, auth.ErrAccountBanned):
			metrics.Get().LoginsTotal.WithLabelValues("banned").Inc()
			util.RespondForbidden(c, "account is banned")
		default:
			metrics.Get().LoginsTotal.WithLabelValues("error").Inc()
			util.RespondError(c, err)
		}
		return
	}

	metrics.Get().LoginsTotal.WithLabelValues("success").Inc()
	util.RespondSuccess(c, "login successful", gin.H{
		"user":  result.User,
		"token": result.Session.Token,
	})
}

// Logout destroys the current session.
func (h *Handlers) Logout(c *gin.Context) {
	sess, ok := util.GetSessionFromContext(c)
	if !ok {
		return
	}
	if err := h.auth.Logout(c.Request.Context(), sess.Token); err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "logged out", nil)
}

// Me returns the account behind the current session.
func (h *Handlers) Me(c *gin.Context) {
	sess, ok := util.GetSessionFromContext(c)
	if !ok {
		return
	}
	user, err := h.auth.CurrentUser(c.Request.Context(), sess.UserID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"user": user})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword verifies the old password and stores a new hash.
func (h *Handlers) ChangePassword(c *gin.Context) {
	sess, ok := util.GetSessionFromContext(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "old_password and new_password are required")
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), sess.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		var verrs auth.ValidationErrors
		switch {
		case stderrors.As(err, &verrs):
			util.RespondWithAPIError(c, errors.ValidationError("new_password", verrs.Error()))
		case stderrors.Is(err, auth.ErrWrongPassword):
			util.RespondForbidden(c, "current password is incorrect")
		default:
			util.RespondError(c, err)
		}
		return
	}
	util.RespondSuccess(c, "password updated", nil)
}

// UpdateProfile edits the caller's bio, sector and picture URLs. Absent
// fields keep their stored value.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	sess, ok := util.GetSessionFromContext(c)
	if !ok {
		return
	}

	var input auth.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), sess.UserID, input)
	if err != nil {
		if stderrors.Is(err, auth.ErrNothingToUpdate) {
			util.RespondBadRequest(c, "no profile fields provided")
			return
		}
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "profile updated", gin.H{"user": user})
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// DeleteAccount removes the caller's account and everything it owns. The
// password is re-verified so a hijacked session cannot destroy the account
// silently.
func (h *Handlers) DeleteAccount(c *gin.Context) {
	sess, ok := util.GetSessionFromContext(c)
	if !ok {
		return
	}

	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "password is required")
		return
	}

	err := h.auth.DeleteAccount(c.Request.Context(), sess.UserID, sess.Token, req.Password)
	if err != nil {
		if stderrors.Is(err, auth.ErrWrongPassword) {
			util.RespondForbidden(c, "password is incorrect")
			return
		}
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "account deleted", nil)
}

// CSRFToken issues the session's CSRF token for cookie-based clients.
func (h *Handlers) CSRFToken(c *gin.Context) {
	sess, ok := util.GetSessionFromContext(c)
	if !ok {
		return
	}
	token, err := h.sessions.EnsureCSRF(c.Request.Context(), sess.Token)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	util.RespondSuccess(c, "", gin.H{"csrf_token": token})
}
