package handler

import (
	"github.com/iliyamo/coworking-reservation/internal/booking"
	"github.com/iliyamo/coworking-reservation/internal/repository"
)

// AdminHandler bundles everything the admin surface touches: resource
// and plan management, promo codes, reservation oversight and the
// revenue ledger.  Methods are spread over the admin_*.go files.
type AdminHandler struct {
	Booking       *booking.Service
	Resources     *repository.ResourceRepo
	Promos        *repository.PromoRepo
	Subscriptions *repository.SubscriptionRepo
	Reservations  *repository.ReservationRepo
	Transactions  *repository.TransactionRepo
}

func NewAdminHandler(b *booking.Service, res *repository.ResourceRepo, pr *repository.PromoRepo, sub *repository.SubscriptionRepo, rsv *repository.ReservationRepo, tr *repository.TransactionRepo) *AdminHandler {
	return &AdminHandler{
		Booking:       b,
		Resources:     res,
		Promos:        pr,
		Subscriptions: sub,
		Reservations:  rsv,
		Transactions:  tr,
	}
}
