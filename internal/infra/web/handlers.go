package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ngo-donation-platform/internal/domain"
	"ngo-donation-platform/internal/domain/model"
	"ngo-donation-platform/internal/infra/metrics"
	"ngo-donation-platform/internal/infra/redis"
	"ngo-donation-platform/internal/usecase"
)

// ===== Auth =====

type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	AdditionalInfo string `json:"additionalInfo"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields required")
		return
	}

	_, err := s.users.Register(r.Context(), usecase.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           model.Role(req.Role),
		Phone:          req.Phone,
		Address:        req.Address,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			writeMessage(w, http.StatusBadRequest, "Email already exists")
		case errors.Is(err, domain.ErrInvalidArgument):
			writeMessage(w, http.StatusBadRequest, "All fields required")
		default:
			s.log.Error().Err(err).Msg("register failed")
			writeMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}
	writeMessage(w, http.StatusCreated, "User registered successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if s.limiter != nil {
		key := redis.LoginKey(req.Email, r.RemoteAddr)
		allowed, err := s.limiter.Allow(r.Context(), key, 5, time.Minute)
		if err != nil {
			// Redis trouble must not lock everyone out.
			s.log.Error().Err(err).Msg("login rate limiter unavailable")
		} else if !allowed {
			metrics.IncLogin("rate_limited")
			writeMessage(w, http.StatusTooManyRequests, "Too many login attempts")
			return
		}
	}

	usr, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeMessage(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		s.log.Error().Err(err).Msg("login failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := s.auth.Mint(usr.ID, usr.Role)
	if err != nil {
		s.log.Error().Err(err).Msg("token mint failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"role":  string(usr.Role),
	})
}

// ===== Registration =====

func (s *Server) handleMyRegistration(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	usr, err := s.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeMessage(w, http.StatusNotFound, "No registration found")
			return
		}
		s.log.Error().Err(err).Msg("load registration failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"registration": toRegistrationResponse(usr),
	})
}

// ===== Donations (authenticated) =====

type initiateRequest struct {
	Amount float64 `json:"amount"`
}

func (s *Server) handleInitiateDonation(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	claims := claimsFrom(r.Context())
	d, checkout, err := s.donations.Initiate(r.Context(), claims.Subject, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			writeMessage(w, http.StatusBadRequest, "Invalid amount")
		case errors.Is(err, domain.ErrUserNotFound):
			writeMessage(w, http.StatusNotFound, "User profile not found")
		default:
			s.log.Error().Err(err).Msg("initiate donation failed")
			writeMessage(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":            "Donation initiated",
		"donationId":         d.ID,
		"paymentRequest":     checkout.Fields,
		"checksum":           checkout.Checksum(),
		"gatewayCheckoutUrl": checkout.URL,
	})
}

func (s *Server) handleMyDonations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	ds, err := s.donations.ListMine(r.Context(), claims.Subject)
	if err != nil {
		s.log.Error().Err(err).Msg("list donations failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"donations": toDonationResponses(ds),
	})
}

// ===== Admin =====

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	totalUsers, totalDonations, err := s.stats.Totals(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"totalUsers":     totalUsers,
		"totalDonations": totalDonations,
	})
}

func (s *Server) handleAdminRegistrations(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListRegistrations(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list registrations failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	out := make([]registrationResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toRegistrationResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"registrations": out})
}

func (s *Server) handleAdminDonations(w http.ResponseWriter, r *http.Request) {
	ds, err := s.donations.ListAll(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list all donations failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"donations": toAdminDonationResponses(ds),
	})
}
