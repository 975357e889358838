package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/partnerz-backend/api/controllers"
	"github.com/angelmondragon/partnerz-backend/api/middleware"
	"github.com/angelmondragon/partnerz-backend/internal/partners"
	"github.com/angelmondragon/partnerz-backend/pkg/config"
	"github.com/angelmondragon/partnerz-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/partnerz-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface needs. Optional dependencies
// may be left nil: Idempotency disables replay protection, Gatherer hides /metrics.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Partners    partners.Service
	Idempotency pkgredis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	Readiness   map[string]controllers.Pinger
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg, svc := p.Config, p.Logger, p.Partners

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Readiness, logg))
	})

	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/rarities", controllers.ListRarities(svc))
	})

	var idem pkgredis.IdempotencyStore
	if cfg.FeatureFlags.Idempotency {
		idem = p.Idempotency
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idem, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/members", func(r chi.Router) {
			r.Post("/", controllers.RegisterMember(svc, logg))
			r.Get("/me", controllers.GetMe(svc, logg))
		})

		r.Route("/v1/partners", func(r chi.Router) {
			r.Get("/", controllers.ListPartners(svc, logg))
			r.Get("/invitations", controllers.ListInvitations(svc, logg))
			r.Post("/invite", controllers.InvitePartner(svc, logg))
			r.Post("/accept", controllers.AcceptInvitation(svc, logg))
			r.Post("/reject", controllers.RejectInvitation(svc, logg))
			r.Post("/leave", controllers.LeavePartner(svc, logg))

			r.Route("/{partnerId}", func(r chi.Router) {
				r.Get("/", controllers.GetConnection(svc, logg))
				r.Post("/points", controllers.SendPoints(svc, logg))
				r.Get("/ledger", controllers.ListLedger(svc, logg))

				r.Route("/goals", func(r chi.Router) {
					r.Post("/", controllers.AddGoal(svc, logg))
					r.Get("/mine", controllers.MyGoals(svc, logg))
					r.Get("/assigned", controllers.AssignedGoals(svc, logg))
					r.Delete("/{goalId}", controllers.RemoveGoal(svc, logg))
					r.Put("/{goalId}/reward", controllers.SetGoalReward(svc, logg))
					r.Post("/{goalId}/complete", controllers.CompleteGoal(svc, logg))
					r.Post("/{goalId}/incomplete", controllers.IncompleteGoal(svc, logg))
					r.Post("/{goalId}/approve", controllers.ApproveGoal(svc, logg))
				})

				r.Route("/coupons", func(r chi.Router) {
					r.Post("/", controllers.CreateCoupon(svc, logg))
					r.Get("/offered", controllers.OfferedCoupons(svc, logg))
					r.Get("/earned", controllers.EarnedCoupons(svc, logg))
					r.Put("/price", controllers.SetCouponPrice(svc, logg))
					r.Post("/draw", controllers.DrawCoupon(svc, logg))
					r.Post("/send", controllers.SendCoupon(svc, logg))
					r.Patch("/{couponId}", controllers.EditCoupon(svc, logg))
					r.Delete("/{couponId}", controllers.RemoveCoupon(svc, logg))
					r.Put("/{couponId}/rarity", controllers.SetCouponRarity(svc, logg))
				})
			})
		})
	})

	return r
}
