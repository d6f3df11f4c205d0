package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"

	"github.com/tarungka/flowplan/plan"
)

func Init(config *koanf.Koanf) {
	log.Info().Msgf("running the plan introspection server on port: %s", config.String("port"))
}

// Run starts the plan introspection HTTP server against a single loaded
// plan. No handler mounted here changes p's operators or streams; see
// PlanRouter for what /plan/validate writes.
func Run(config *koanf.Koanf, p *plan.Plan) {

	serverPort := config.String("port")

	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/health"))
	router.Use(middleware.CleanPath) // Not sure
	router.Use(middleware.RequestID)

	router.Mount("/plan", PlanRouter(p))

	log.Error().Msg(http.ListenAndServe(":"+serverPort, router).Error())
}
