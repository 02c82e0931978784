package apitest

import (
	"net/http"
	"strings"
)

const (
	purposeLogin        = "LOGIN"
	purposeRegistration = "REGISTRATION"
)

func (s *Server) issueOTPLocked(email, purpose string) {
	code := s.newOTP()
	s.otps[otpKey{email: email, purpose: purpose}] = code
	if s.onOTP != nil {
		s.onOTP(email, purpose, code)
	}
}

// consumeOTPLocked checks and burns a code. A wrong code leaves the pending one.
func (s *Server) consumeOTPLocked(email, purpose, code string) bool {
	k := otpKey{email: email, purpose: purpose}
	want, ok := s.otps[k]
	if !ok || want != code {
		return false
	}
	delete(s.otps, k)
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := decode(r, &body); err != nil || body.Email == "" || body.Password == "" {
		writeError(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}
	role := strings.ToUpper(strings.TrimSpace(body.Role))
	if role != roleCandidate && role != roleRecruiter {
		writeError(w, r, http.StatusBadRequest, "Invalid role")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok && u.Verified {
		writeError(w, r, http.StatusConflict, "Email is already registered")
		return
	}
	u := s.createUserLocked(email, body.Password, role)
	s.issueOTPLocked(u.Email, purposeRegistration)

	writeJSON(w, http.StatusCreated, otpAck{
		Success: true,
		Email:   u.Email,
		Message: "Registration initiated. Please verify email with the otp sent to " + u.Email,
		OTPSent: true,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := decode(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok || u.Password != body.Password {
		writeJSON(w, http.StatusOK, otpAck{
			Success: false,
			Email:   email,
			Message: "Invalid email or password",
			Error:   "Login failed",
		})
		return
	}
	if !u.Verified {
		writeJSON(w, http.StatusOK, otpAck{
			Success: false,
			Email:   email,
			Message: "Verify email before logging in",
			Error:   "Verify email before logging in",
		})
		return
	}
	s.issueOTPLocked(email, purposeLogin)

	writeJSON(w, http.StatusOK, otpAck{
		Success: true,
		Email:   email,
		Message: "Login initiated. Please check your email for OTP",
		OTPSent: true,
	})
}

func (s *Server) handleVerifyRegistration(w http.ResponseWriter, r *http.Request) {
	var body otpBody
	if err := decode(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		writeError(w, r, http.StatusNotFound, "No pending registration found. Please register again")
		return
	}
	if u.Verified {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":            true,
			"message":            "Users verified already",
			"userId":             u.ID,
			"email":              u.Email,
			"role":               u.Role,
			"accountStatus":      "ACTIVE",
			"verificationStatus": "ALREADY_VERIFIED",
		})
		return
	}
	if !s.consumeOTPLocked(email, purposeRegistration, body.OTPCode) {
		writeError(w, r, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	u.Verified = true

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"message":            "Users verified and created Successfully",
		"userId":             u.ID,
		"email":              u.Email,
		"role":               u.Role,
		"accountStatus":      "ACTIVE",
		"verificationStatus": "VERIFIED",
	})
}

func (s *Server) handleVerifyLogin(w http.ResponseWriter, r *http.Request) {
	var body otpBody
	if err := decode(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	s.mu.Lock()
	u, ok := s.users[email]
	valid := ok && s.consumeOTPLocked(email, purposeLogin, body.OTPCode)
	s.mu.Unlock()
	if !valid {
		writeError(w, r, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}

	token, err := s.mint(u, s.tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token issuance failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"userId":  u.ID,
		"email":   u.Email,
		"role":    u.Role,
		"message": "Login successful",
	})
}

func (s *Server) handleResend(w http.ResponseWriter, r *http.Request) {
	var body otpBody
	if err := decode(r, &body); err != nil {
		writeError(w, r, http.StatusBadRequest, "Malformed request")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	purpose := strings.ToUpper(body.OTPPurpose)
	if purpose != purposeLogin && purpose != purposeRegistration {
		writeError(w, r, http.StatusBadRequest, "Invalid OTP purpose")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; !ok {
		writeError(w, r, http.StatusNotFound, "User not found")
		return
	}
	s.issueOTPLocked(email, purpose)
	writeJSON(w, http.StatusOK, otpAck{
		Success: true,
		Email:   email,
		Message: "OTP resent to " + email,
		OTPSent: true,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, p principal) {
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":             p.user.ID,
		"email":              p.user.Email,
		"role":               p.user.Role,
		"accountStatus":      "ACTIVE",
		"verificationStatus": "VERIFIED",
		"message":            "User fetched successfully",
	})
}
