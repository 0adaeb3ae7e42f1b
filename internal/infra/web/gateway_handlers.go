package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"ngo-donation-platform/internal/domain"
	"ngo-donation-platform/internal/domain/model"
	"ngo-donation-platform/internal/infra/logging"
	"ngo-donation-platform/internal/infra/metrics"
	"ngo-donation-platform/internal/usecase"
)

// The notify channel answers with these two literal bodies; some gateways
// parse them and retry on anything else.
const (
	notifyBodyOK    = "OK"
	notifyBodyError = "ERROR"
)

// handleReturn is the browser return redirect: purely navigational, no state
// mutation. The webhook is the authority for the actual outcome.
func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		writeMessage(w, http.StatusBadRequest, "order_id is required")
		return
	}
	metrics.IncNotification("return", "redirected")
	http.Redirect(w, r, withOrderID(s.client.StatusURL, orderID), http.StatusFound)
}

// handleCancel force-fails the donation when an order id is present, then
// always sends the browser onward. A donation that already reached SUCCESS
// is left alone by the comparator.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if orderID := r.URL.Query().Get("order_id"); orderID != "" {
		if d, err := s.reconcile.Cancel(r.Context(), orderID); err != nil {
			// The redirect must happen regardless.
			metrics.IncNotification("cancel", "error")
			s.log.Warn().Err(err).Str("donation_id", orderID).Msg("cancel redirect could not update donation")
		} else {
			metrics.IncNotification("cancel", cancelOutcome(d))
		}
	}
	http.Redirect(w, r, s.client.CancelURL, http.StatusFound)
}

// cancelOutcome labels a cancel that the comparator refused (the donation had
// already reached a higher-ranked status) apart from one actually applied.
func cancelOutcome(d *model.Donation) string {
	if d.Status == model.DonationStatusFailed {
		return "applied"
	}
	return "refused"
}

// handleNotify is the authoritative server-to-server webhook. It must always
// answer with a gateway-parseable body, never a propagated panic or hang.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.notifyResult(w, http.StatusBadRequest, "bad_form")
		return
	}

	orderID := r.PostFormValue("order_id")
	statusCode := r.PostFormValue("status_code")
	if orderID == "" || statusCode == "" {
		s.notifyResult(w, http.StatusBadRequest, "missing_fields")
		return
	}

	n := usecase.Notification{
		OrderID:    orderID,
		StatusCode: statusCode,
		PaymentID:  r.PostFormValue("payment_id"),
		Signature:  r.PostFormValue("md5sig"),
		Channel:    usecase.ChannelNotify,
	}
	if raw := r.PostFormValue("payhere_amount"); raw != "" {
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			n.Amount = amount
			n.HasAmount = true
		}
	}

	ctx := logging.WithDonationID(r.Context(), orderID)
	if s.replay != nil {
		if seen, err := s.replay.Seen(ctx, orderID, statusCode, n.PaymentID); err == nil && seen {
			metrics.IncDuplicateNotification()
		}
	}

	if _, err := s.reconcile.Apply(ctx, n); err != nil {
		switch {
		case errors.Is(err, domain.ErrDonationNotFound):
			s.notifyResult(w, http.StatusNotFound, "unknown_order")
		case errors.Is(err, domain.ErrSignatureMismatch):
			s.notifyResult(w, http.StatusBadRequest, "bad_signature")
		default:
			s.log.Error().Err(err).Str("donation_id", orderID).Msg("notify processing failed")
			s.notifyResult(w, http.StatusInternalServerError, "error")
		}
		return
	}

	metrics.IncNotification("notify", "ok")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(notifyBodyOK))
}

func (s *Server) notifyResult(w http.ResponseWriter, code int, result string) {
	metrics.IncNotification("notify", result)
	w.WriteHeader(code)
	_, _ = w.Write([]byte(notifyBodyError))
}

// ===== Test-mode status callback =====

type statusCallbackRequest struct {
	DonationID    string `json:"donationId"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

// handleStatusCallback is the synchronous status update used by the
// browser-driven flow and the mock gateway. It carries no signature, so it
// maps the reported status onto the same state machine directly.
func (s *Server) handleStatusCallback(w http.ResponseWriter, r *http.Request) {
	var req statusCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.DonationID == "" || req.Status == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	var statusCode string
	switch model.DonationStatus(req.Status) {
	case model.DonationStatusSuccess:
		statusCode = "2"
	case model.DonationStatusFailed:
		statusCode = "-1"
	default:
		writeMessage(w, http.StatusBadRequest, "Invalid status")
		return
	}

	d, err := s.reconcile.Apply(r.Context(), usecase.Notification{
		OrderID:    req.DonationID,
		StatusCode: statusCode,
		PaymentID:  req.TransactionID,
		Channel:    usecase.ChannelCallback,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDonationNotFound) {
			writeMessage(w, http.StatusNotFound, "Donation not found")
			return
		}
		s.log.Error().Err(err).Str("donation_id", req.DonationID).Msg("status callback failed")
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	metrics.IncNotification("callback", "ok")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Donation status updated",
		"donation": toDonationResponse(d),
	})
}

func withOrderID(base, orderID string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("order_id", orderID)
	u.RawQuery = q.Encode()
	return u.String()
}
