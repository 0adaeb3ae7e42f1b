package web

import (
	"encoding/json"
	"net/http"
	"time"

	"ngo-donation-platform/internal/domain/model"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// ===== Response DTOs (domain entities are never serialized directly) =====

type donationResponse struct {
	ID            string    `json:"id"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	Gateway       string    `json:"gateway"`
	TransactionID string    `json:"transactionId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toDonationResponse(d *model.Donation) donationResponse {
	return donationResponse{
		ID:            d.ID,
		Amount:        d.Amount,
		Status:        string(d.Status),
		Gateway:       d.Gateway,
		TransactionID: d.TransactionID,
		CreatedAt:     d.CreatedAt,
	}
}

func toDonationResponses(ds []*model.Donation) []donationResponse {
	out := make([]donationResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDonationResponse(d))
	}
	return out
}

type donorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type adminDonationResponse struct {
	donationResponse
	User donorResponse `json:"user"`
}

func toAdminDonationResponses(ds []*model.DonationWithDonor) []adminDonationResponse {
	out := make([]adminDonationResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, adminDonationResponse{
			donationResponse: toDonationResponse(&d.Donation),
			User:             donorResponse{ID: d.OwnerID, Name: d.DonorName, Email: d.DonorEmail},
		})
	}
	return out
}

type registrationResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	AdditionalInfo string    `json:"additionalInfo,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toRegistrationResponse(u *model.User) registrationResponse {
	return registrationResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           string(u.Role),
		Phone:          u.Phone,
		Address:        u.Address,
		AdditionalInfo: u.AdditionalInfo,
		CreatedAt:      u.CreatedAt,
	}
}
