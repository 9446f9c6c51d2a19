// Package api serves the balloting service over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"balloting-backend/service"
)

// API Endpoint patterns
const (
	GetAdminPattern          = "/api/admin"
	GetStatusPattern         = "/api/status"
	MembersPattern           = "/api/members"
	GetMemberPattern         = "/api/members/{address}"
	PostNominationPattern    = "/api/nominations"
	GetNomineesPattern       = "/api/nominees"
	PostVotePattern          = "/api/votes"
	GetVotesPattern          = "/api/votes/{address}"
	PostSessionStartPattern  = "/api/session/start"
	PostSessionEndPattern    = "/api/session/end"
	GetSessionPattern        = "/api/session"
	GetResultsPattern        = "/api/results"
	GetResultsVerifyPattern  = "/api/results/verify"
	GetLedgerPattern         = "/api/ledger"
	GetLedgerValidatePattern = "/api/ledger/validate"
	GetLedgerBlockPattern    = "/api/ledger/{index:[0-9]+}"
	MetricsPattern           = "/metrics"
	RequestIDHeader          = "X-Request-Id"
	MaxRequestBodySize       = 1 << 16
)

type Server struct {
	service *service.BallotingService
	queue   *service.QueueProcessor
	router  *mux.Router
}

// NewServer routes every mutating request through queue, so operations are
// committed in arrival order.
func NewServer(svc *service.BallotingService, queue *service.QueueProcessor) *Server {
	s := &Server{
		service: svc,
		queue:   queue,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(requestIDMiddleware, metricsMiddleware)

	r.HandleFunc(GetAdminPattern, s.GetAdminHandler).Methods("GET")
	r.HandleFunc(GetStatusPattern, s.GetStatusHandler).Methods("GET")
	r.HandleFunc(MembersPattern, s.GetMembersHandler).Methods("GET")
	r.HandleFunc(MembersPattern, s.PostRegisterMemberHandler).Methods("POST")
	r.HandleFunc(GetMemberPattern, s.GetMemberHandler).Methods("GET")
	r.HandleFunc(PostNominationPattern, s.PostNominationHandler).Methods("POST")
	r.HandleFunc(GetNomineesPattern, s.GetNomineesHandler).Methods("GET")
	r.HandleFunc(PostVotePattern, s.PostVoteHandler).Methods("POST")
	r.HandleFunc(GetVotesPattern, s.GetVotesHandler).Methods("GET")
	r.HandleFunc(PostSessionStartPattern, s.PostStartVotingHandler).Methods("POST")
	r.HandleFunc(PostSessionEndPattern, s.PostEndVotingHandler).Methods("POST")
	r.HandleFunc(GetSessionPattern, s.GetSessionHandler).Methods("GET")
	r.HandleFunc(GetResultsPattern, s.GetResultsHandler).Methods("GET")
	r.HandleFunc(GetResultsVerifyPattern, s.GetResultsVerifyHandler).Methods("GET")
	r.HandleFunc(GetLedgerPattern, s.GetLedgerHandler).Methods("GET")
	r.HandleFunc(GetLedgerValidatePattern, s.GetLedgerValidateHandler).Methods("GET")
	r.HandleFunc(GetLedgerBlockPattern, s.GetLedgerBlockHandler).Methods("GET")
	r.Handle(MetricsPattern, promhttp.Handler()).Methods("GET")
}

func (s *Server) Handler() http.Handler {
	return s.router
}
