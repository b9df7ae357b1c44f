package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"expense-ledger/internal/auth"

	"github.com/gin-gonic/gin"
)

// forgotResponse is sent whether or not the email maps to an account.
const forgotResponse = "If email exists, OTP has been sent"

type forgotPasswordReq struct {
	Email string `json:"email" binding:"required"`
}

// ForgotPassword issues a reset code. The response body is identical for
// known and unknown emails; only a mail delivery failure is distinguishable,
// which is the behavior the service has always had.
func (h *Handlers) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email is required"})
		return
	}

	_, err := h.db.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusOK, gin.H{"message": forgotResponse})
		} else {
			h.serverError(c, "forgot-password: lookup user", err)
		}
		return
	}

	otp, err := auth.GenerateOtp()
	if err != nil {
		h.serverError(c, "forgot-password: generate otp", err)
		return
	}
	otpHash, err := auth.HashOtp(otp)
	if err != nil {
		h.serverError(c, "forgot-password: hash otp", err)
		return
	}

	// A new code supersedes every outstanding one for this email.
	if err := h.db.SupersedeOtps(req.Email); err != nil {
		h.serverError(c, "forgot-password: supersede otps", err)
		return
	}
	if _, err := h.db.CreateOtp(req.Email, otpHash, time.Now().Add(h.cfg.OtpTTL())); err != nil {
		h.serverError(c, "forgot-password: store otp", err)
		return
	}

	if err := h.mailer.SendResetOtp(req.Email, otp); err != nil {
		h.logger.Error("forgot-password: send mail", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": forgotResponse})
}

type verifyOtpReq struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

// VerifyResetOtp checks a candidate code against the newest unused OTP for
// the email. Every outcome except a bare mismatch retires the record;
// mismatches advance the attempt counter atomically.
func (h *Handlers) VerifyResetOtp(c *gin.Context) {
	var req verifyOtpReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Otp == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and OTP are required"})
		return
	}

	otp, err := h.db.LatestUnusedOtp(req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired OTP"})
		} else {
			h.serverError(c, "verify-otp: lookup otp", err)
		}
		return
	}

	if time.Now().After(otp.ExpiresAt) {
		if err := h.db.MarkOtpUsed(otp.ID); err != nil {
			h.serverError(c, "verify-otp: retire expired otp", err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "OTP expired"})
		return
	}

	if otp.Attempts >= h.cfg.Auth.OtpMaxAttempts {
		if err := h.db.MarkOtpUsed(otp.ID); err != nil {
			h.serverError(c, "verify-otp: retire exhausted otp", err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Too many wrong attempts"})
		return
	}

	if !auth.CheckOtp(req.Otp, otp.OtpHash) {
		if _, err := h.db.IncrementOtpAttempts(otp.ID, h.cfg.Auth.OtpMaxAttempts); err != nil {
			h.serverError(c, "verify-otp: count attempt", err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid OTP"})
		return
	}

	if err := h.db.MarkOtpUsed(otp.ID); err != nil {
		h.serverError(c, "verify-otp: retire verified otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully"})
}

type resetPasswordReq struct {
	Email       string `json:"email" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ResetPassword stores a new password hash and retires every OTP for the
// email, expired or not.
func (h *Handlers) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and newPassword are required"})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.serverError(c, "reset-password: hash password", err)
		return
	}

	updated, err := h.db.UpdateUserPassword(req.Email, hash)
	if err != nil {
		h.serverError(c, "reset-password: update user", err)
		return
	}
	if !updated {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User not found"})
		return
	}

	if err := h.db.RetireOtps(req.Email); err != nil {
		h.serverError(c, "reset-password: retire otps", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}
