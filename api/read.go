package api

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"balloting-backend/errors"
	"balloting-backend/models"
	"balloting-backend/service"
)

type SessionResponse struct {
	State        models.SessionState  `json:"state"`
	VotingActive bool                 `json:"voting_active"`
	Closed       bool                 `json:"closed"`
	Winner       common.Address       `json:"winner"`
	Times        service.SessionTimes `json:"times"`
}

type LedgerValidationResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func parseAddress(r *http.Request) (common.Address, error) {
	raw := mux.Vars(r)["address"]
	if !common.IsHexAddress(raw) {
		return common.Address{}, errors.BadRequestParameter.Clone().SetData("address", raw)
	}
	return common.HexToAddress(raw), nil
}

func (s *Server) GetAdminHandler(w http.ResponseWriter, r *http.Request) {
	MustWriteJSON(w, http.StatusOK, map[string]common.Address{"admin": s.service.Admin()})
}

func (s *Server) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	MustWriteJSON(w, http.StatusOK, s.service.Status())
}

func (s *Server) GetMembersHandler(w http.ResponseWriter, r *http.Request) {
	MustWriteJSON(w, http.StatusOK, s.service.GetMembers())
}

func (s *Server) GetMemberHandler(w http.ResponseWriter, r *http.Request) {
	address, err := parseAddress(r)
	if err != nil {
		WriteJSONError(w, err)
		return
	}
	MustWriteJSON(w, http.StatusOK, s.service.Member(address))
}

func (s *Server) GetNomineesHandler(w http.ResponseWriter, r *http.Request) {
	MustWriteJSON(w, http.StatusOK, s.service.GetNominees())
}

func (s *Server) GetVotesHandler(w http.ResponseWriter, r *http.Request) {
	address, err := parseAddress(r)
	if err != nil {
		WriteJSONError(w, err)
		return
	}
	MustWriteJSON(w, http.StatusOK, models.Tally{Nominee: address, Votes: s.service.GetVotes(address)})
}

func (s *Server) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	status := s.service.Status()
	MustWriteJSON(w, http.StatusOK, SessionResponse{
		State:        status.State,
		VotingActive: status.VotingActive,
		Closed:       status.Closed,
		Winner:       status.Winner,
		Times:        status.Session,
	})
}

func (s *Server) GetResultsHandler(w http.ResponseWriter, r *http.Request) {
	MustWriteJSON(w, http.StatusOK, s.service.Results())
}

func (s *Server) GetResultsVerifyHandler(w http.ResponseWriter, r *http.Request) {
	MustWriteJSON(w, http.StatusOK, s.service.VerifyCount())
}

func (s *Server) GetLedgerHandler(w http.ResponseWriter, r *http.Request) {
	MustWriteJSON(w, http.StatusOK, s.service.Ledger())
}

func (s *Server) GetLedgerBlockHandler(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["index"]
	index, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("index", raw))
		return
	}

	block, err := s.service.Block(index)
	if err != nil {
		WriteJSONError(w, err)
		return
	}
	MustWriteJSON(w, http.StatusOK, block)
}

func (s *Server) GetLedgerValidateHandler(w http.ResponseWriter, r *http.Request) {
	response := LedgerValidationResponse{Valid: true}
	if err := s.service.ValidateLedger(); err != nil {
		response.Valid = false
		response.Error = err.Error()
	}
	MustWriteJSON(w, http.StatusOK, response)
}
